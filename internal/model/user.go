package model

import (
	"strings"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Base
	Name     string `json:"name" gorm:"size:50;not null" validate:"required,max=50"`
	Email    string `json:"email" gorm:"uniqueIndex;not null" validate:"required,email_address"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role" gorm:"size:20;not null" validate:"required,oneof=user admin"`
}

func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
