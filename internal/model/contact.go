package model

import (
	"strings"
)

const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in-progress"
	ContactStatusCompleted  = "completed"

	DefaultContactSubject = "General Inquiry"
)

var ContactStatuses = []string{ContactStatusNew, ContactStatusInProgress, ContactStatusCompleted}

type Contact struct {
	Base
	Name         string       `json:"name" gorm:"size:100;not null" validate:"required,max=100"`
	Email        string       `json:"email" gorm:"index;not null" validate:"required,email_address"`
	Phone        string       `json:"phone,omitempty" validate:"omitempty,phone"`
	Message      string       `json:"message" gorm:"type:text;not null" validate:"required,max=2000"`
	Subject      string       `json:"subject" validate:"max=200"`
	Status       string       `json:"status" gorm:"size:20;index;not null" validate:"required,oneof=new in-progress completed"`
	Notes        string       `json:"notes,omitempty" gorm:"type:text"`
	AssignedToID *uint        `json:"-" gorm:"index"`
	AssignedTo   *UserSummary `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;-:migration"`
	IPAddress    string       `json:"ipAddress"`
	UserAgent    string       `json:"userAgent"`
}

// Normalize trims input and fills defaults before validation.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Message = strings.TrimSpace(c.Message)
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Subject == "" {
		c.Subject = DefaultContactSubject
	}
}

// ContactPatch lists the fields an administrator may change.
type ContactPatch struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Message    *string `json:"message"`
	Subject    *string `json:"subject"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
	AssignedTo *uint   `json:"assignedTo"` // 0 clears the assignment
}

func (p *ContactPatch) Apply(c *Contact) {
	setIf(&c.Name, p.Name)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Message, p.Message)
	setIf(&c.Subject, p.Subject)
	setIf(&c.Status, p.Status)
	setIf(&c.Notes, p.Notes)
	if p.AssignedTo != nil {
		c.AssignedToID = nil
		if id := *p.AssignedTo; id != 0 {
			c.AssignedToID = &id
		}
		c.AssignedTo = nil
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
