package model

import (
	"time"
)

// Base replaces gorm.Model: records are hard-deleted, so there is no DeletedAt.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the shallow projection of a User used for assignedTo and author.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (UserSummary) TableName() string { return "users" }

// ServiceSummary is the shallow projection of a Service.
type ServiceSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

func (ServiceSummary) TableName() string { return "services" }

// PortfolioSummary is the shallow projection of a Portfolio project.
type PortfolioSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	MainImage   string `json:"mainImage,omitempty"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (PortfolioSummary) TableName() string { return "portfolios" }

// BlogSummary is the shallow projection of a Blog post.
type BlogSummary struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}

func (BlogSummary) TableName() string { return "blogs" }

// nonNil keeps JSON list fields rendering as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
