package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	QuoteStatusNew                = "new"
	QuoteStatusReviewing          = "reviewing"
	QuoteStatusSiteVisitScheduled = "site-visit-scheduled"
	QuoteStatusQuotePrepared      = "quote-prepared"
	QuoteStatusSent               = "sent"
	QuoteStatusAccepted           = "accepted"
	QuoteStatusDeclined           = "declined"
	QuoteStatusCompleted          = "completed"
)

var QuoteStatuses = []string{
	QuoteStatusNew, QuoteStatusReviewing, QuoteStatusSiteVisitScheduled, QuoteStatusQuotePrepared,
	QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusCompleted,
}

type Address struct {
	Street  string `json:"street" form:"street" validate:"required"`
	City    string `json:"city" form:"city" validate:"required"`
	State   string `json:"state" form:"state" validate:"required"`
	ZipCode string `json:"zipCode" form:"zipCode" gorm:"column:zip_code" validate:"required,zip"`
}

type Quote struct {
	Base
	Name              string                      `json:"name" gorm:"size:100;not null" validate:"required,max=100"`
	Email             string                      `json:"email" gorm:"index;not null" validate:"required,email_address"`
	Phone             string                      `json:"phone" gorm:"not null" validate:"required,phone"`
	Address           Address                     `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	PropertyType      string                      `json:"propertyType" gorm:"size:20" validate:"required,oneof=residential commercial other"`
	PropertySize      string                      `json:"propertySize" gorm:"size:20" validate:"required,oneof=small medium large extra-large"`
	ServicesRequested []QuoteServiceRequest       `json:"servicesRequested" gorm:"foreignKey:QuoteID" validate:"dive"`
	Budget            string                      `json:"budget,omitempty" gorm:"size:20" validate:"omitempty,oneof=under-5000 5000-10000 10000-25000 25000-50000 50000-100000 above-100000 unsure"`
	Timeframe         string                      `json:"timeframe" gorm:"size:20" validate:"required,oneof=asap within-30-days within-3-months within-6-months flexible"`
	Description       string                      `json:"description,omitempty" gorm:"type:text" validate:"max=5000"`
	Attachments       datatypes.JSONSlice[string] `json:"attachments"`
	Status            string                      `json:"status" gorm:"size:30;index;not null" validate:"required,oneof=new reviewing site-visit-scheduled quote-prepared sent accepted declined completed"`
	AssignedToID      *uint                       `json:"-" gorm:"index"`
	AssignedTo        *UserSummary                `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;-:migration"`
	EstimatedCost     *float64                    `json:"estimatedCost,omitempty" validate:"omitempty,gte=0"`
	FinalQuote        string                      `json:"finalQuote,omitempty"`
	Notes             string                      `json:"notes,omitempty" gorm:"type:text"`
	HearAboutUs       string                      `json:"hearAboutUs,omitempty"`
	SiteVisitDate     *time.Time                  `json:"siteVisitDate,omitempty"`
	IPAddress         string                      `json:"ipAddress"`
	UserAgent         string                      `json:"userAgent"`
}

// QuoteServiceRequest is one ordered entry of Quote.ServicesRequested.
type QuoteServiceRequest struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	QuoteID   uint            `json:"-" gorm:"index;not null"`
	Position  int             `json:"-"`
	ServiceID uint            `json:"serviceId" gorm:"index;not null" validate:"required"`
	Service   *ServiceSummary `json:"service,omitempty" gorm:"foreignKey:ServiceID;-:migration"`
	Details   string          `json:"details,omitempty" gorm:"type:text"`
}

func (QuoteServiceRequest) TableName() string { return "quote_services" }

// Normalize trims input and fills defaults before validation.
func (q *Quote) Normalize() {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = strings.ToLower(strings.TrimSpace(q.Email))
	q.Phone = strings.TrimSpace(q.Phone)
	q.Address.Street = strings.TrimSpace(q.Address.Street)
	q.Address.City = strings.TrimSpace(q.Address.City)
	q.Address.State = strings.TrimSpace(q.Address.State)
	q.Address.ZipCode = strings.TrimSpace(q.Address.ZipCode)
	q.Description = strings.TrimSpace(q.Description)
	if q.PropertyType == "" {
		q.PropertyType = "residential"
	}
	if q.PropertySize == "" {
		q.PropertySize = "medium"
	}
	if q.Timeframe == "" {
		q.Timeframe = "flexible"
	}
	q.Attachments = nonNil(q.Attachments)
	q.ServicesRequested = nonNil(q.ServicesRequested)
	for i := range q.ServicesRequested {
		q.ServicesRequested[i].Position = i
	}
}

// QuotePatch lists the fields an administrator may change.
type QuotePatch struct {
	Name              *string                `json:"name"`
	Email             *string                `json:"email"`
	Phone             *string                `json:"phone"`
	Address           *Address               `json:"address"`
	PropertyType      *string                `json:"propertyType"`
	PropertySize      *string                `json:"propertySize"`
	ServicesRequested *[]ServiceRequestInput `json:"servicesRequested"`
	Budget            *string                `json:"budget"`
	Timeframe         *string                `json:"timeframe"`
	Description       *string                `json:"description"`
	Attachments       *[]string              `json:"attachments"`
	Status            *string                `json:"status"`
	AssignedTo        *uint                  `json:"assignedTo"` // 0 clears the assignment
	EstimatedCost     *float64               `json:"estimatedCost"`
	FinalQuote        *string                `json:"finalQuote"`
	Notes             *string                `json:"notes"`
	HearAboutUs       *string                `json:"hearAboutUs"`
	SiteVisitDate     *time.Time             `json:"siteVisitDate"`
}

// ServiceRequestInput is the wire shape of one requested service.
type ServiceRequestInput struct {
	Service uint   `json:"service" form:"service"`
	Details string `json:"details" form:"details"`
}

func ServiceRequests(in []ServiceRequestInput) []QuoteServiceRequest {
	out := make([]QuoteServiceRequest, 0, len(in))
	for i, r := range in {
		out = append(out, QuoteServiceRequest{Position: i, ServiceID: r.Service, Details: strings.TrimSpace(r.Details)})
	}
	return out
}

// Apply merges the patch into q. It reports whether servicesRequested was replaced.
func (p *QuotePatch) Apply(q *Quote) (servicesChanged bool) {
	setIf(&q.Name, p.Name)
	setIf(&q.Email, p.Email)
	setIf(&q.Phone, p.Phone)
	setIf(&q.Address, p.Address)
	setIf(&q.PropertyType, p.PropertyType)
	setIf(&q.PropertySize, p.PropertySize)
	setIf(&q.Budget, p.Budget)
	setIf(&q.Timeframe, p.Timeframe)
	setIf(&q.Description, p.Description)
	setIf(&q.Status, p.Status)
	setIf(&q.FinalQuote, p.FinalQuote)
	setIf(&q.Notes, p.Notes)
	setIf(&q.HearAboutUs, p.HearAboutUs)
	if p.Attachments != nil {
		q.Attachments = datatypes.NewJSONSlice(*p.Attachments)
	}
	if p.EstimatedCost != nil {
		cost := *p.EstimatedCost
		q.EstimatedCost = &cost
	}
	if p.SiteVisitDate != nil {
		at := *p.SiteVisitDate
		q.SiteVisitDate = &at
	}
	if p.AssignedTo != nil {
		q.AssignedToID = nil
		if id := *p.AssignedTo; id != 0 {
			q.AssignedToID = &id
		}
		q.AssignedTo = nil
	}
	if p.ServicesRequested != nil {
		q.ServicesRequested = ServiceRequests(*p.ServicesRequested)
		servicesChanged = true
	}
	return servicesChanged
}

// quoteStatusMessages holds the canned customer message for each status that notifies the submitter.
var quoteStatusMessages = map[string]string{
	QuoteStatusReviewing:          "We are currently reviewing your quote request.",
	QuoteStatusSiteVisitScheduled: "A site visit has been scheduled.",
	QuoteStatusQuotePrepared:      "Your quote has been prepared and will be sent to you shortly.",
	QuoteStatusSent:               "Your quote has been sent to your email.",
	QuoteStatusAccepted:           "Thank you for accepting our quote. We look forward to working with you!",
	QuoteStatusDeclined:           "We regret that our quote was not accepted. Please contact us if you have any questions.",
	QuoteStatusCompleted:          "Your project has been marked as completed. Thank you for choosing Sphinx Landscapes!",
}

// QuoteStatusMessage returns the submitter message for status. ok is false for "new"
// and unknown values, which never notify.
func QuoteStatusMessage(status string) (msg string, ok bool) {
	msg, ok = quoteStatusMessages[status]
	return msg, ok
}
