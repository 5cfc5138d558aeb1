package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

var PortfolioCategories = []string{
	"residential", "commercial", "municipal", "garden", "patio", "water-feature", "other",
}

type Testimonial struct {
	Text   string `json:"text,omitempty" gorm:"column:text;type:text"`
	Author string `json:"author,omitempty" gorm:"column:author"`
	Rating int    `json:"rating,omitempty" gorm:"column:rating" validate:"omitempty,min=1,max=5"`
}

type Portfolio struct {
	Base
	Title          string                      `json:"title" gorm:"size:100;not null" validate:"required,max=100"`
	Slug           string                      `json:"slug" gorm:"size:160;uniqueIndex;not null"`
	Description    string                      `json:"description" gorm:"type:text;not null" validate:"required"`
	Summary        string                      `json:"summary,omitempty" validate:"max=200"`
	Location       string                      `json:"location,omitempty"`
	Client         string                      `json:"client,omitempty"`
	StartDate      *time.Time                  `json:"startDate,omitempty"`
	CompletionDate *time.Time                  `json:"completionDate,omitempty"`
	MainImage      string                      `json:"mainImage" gorm:"not null" validate:"required"`
	Images         datatypes.JSONSlice[string] `json:"images"`
	BeforeImages   datatypes.JSONSlice[string] `json:"beforeImages"`
	AfterImages    datatypes.JSONSlice[string] `json:"afterImages"`
	Featured       bool                        `json:"featured" gorm:"index"`
	Services       []ServiceSummary            `json:"services" gorm:"many2many:portfolio_services;joinForeignKey:PortfolioID;joinReferences:ServiceID;-:migration"`
	Testimonial    Testimonial                 `json:"testimonial" gorm:"embedded;embeddedPrefix:testimonial_"`
	Highlights     datatypes.JSONSlice[string] `json:"highlights"`
	Challenges     string                      `json:"challenges,omitempty" gorm:"type:text"`
	Solutions      string                      `json:"solutions,omitempty" gorm:"type:text"`
	Published      bool                        `json:"published" gorm:"index"`
	Category       string                      `json:"category" gorm:"size:30;index" validate:"required,oneof=residential commercial municipal garden patio water-feature other"`

	DurationWeeks   *int               `json:"durationWeeks" gorm:"-"`
	RelatedProjects []PortfolioSummary `json:"relatedProjects,omitempty" gorm:"-"`
}

// PortfolioService is the join row behind Portfolio.Services.
type PortfolioService struct {
	PortfolioID uint `gorm:"primaryKey"`
	ServiceID   uint `gorm:"primaryKey;index"`
}

func (PortfolioService) TableName() string { return "portfolio_services" }

// PortfolioInput is the create/update payload. Pointer fields are optional on update.
type PortfolioInput struct {
	Title          *string      `json:"title" form:"title"`
	Description    *string      `json:"description" form:"description"`
	Summary        *string      `json:"summary" form:"summary"`
	Location       *string      `json:"location" form:"location"`
	Client         *string      `json:"client" form:"client"`
	StartDate      *time.Time   `json:"startDate" form:"startDate"`
	CompletionDate *time.Time   `json:"completionDate" form:"completionDate"`
	MainImage      *string      `json:"mainImage" form:"mainImage"`
	Images         *[]string    `json:"images" form:"images"`
	BeforeImages   *[]string    `json:"beforeImages" form:"beforeImages"`
	AfterImages    *[]string    `json:"afterImages" form:"afterImages"`
	Featured       *bool        `json:"featured" form:"featured"`
	Services       *[]uint      `json:"services" form:"services"`
	Testimonial    *Testimonial `json:"testimonial" form:"testimonial"`
	Highlights     *[]string    `json:"highlights" form:"highlights"`
	Challenges     *string      `json:"challenges" form:"challenges"`
	Solutions      *string      `json:"solutions" form:"solutions"`
	Published      *bool        `json:"published" form:"published"`
	Category       *string      `json:"category" form:"category"`
}

// NewPortfolio returns a Portfolio carrying the schema defaults.
func NewPortfolio() *Portfolio {
	return &Portfolio{Published: true, Category: "residential"}
}

func (in *PortfolioInput) Apply(p *Portfolio) {
	setIf(&p.Title, in.Title)
	setIf(&p.Description, in.Description)
	setIf(&p.Summary, in.Summary)
	setIf(&p.Location, in.Location)
	setIf(&p.Client, in.Client)
	setIf(&p.MainImage, in.MainImage)
	setIf(&p.Featured, in.Featured)
	setIf(&p.Testimonial, in.Testimonial)
	setIf(&p.Challenges, in.Challenges)
	setIf(&p.Solutions, in.Solutions)
	setIf(&p.Published, in.Published)
	setIf(&p.Category, in.Category)
	if in.StartDate != nil {
		at := *in.StartDate
		p.StartDate = &at
	}
	if in.CompletionDate != nil {
		at := *in.CompletionDate
		p.CompletionDate = &at
	}
	if in.Images != nil {
		p.Images = datatypes.NewJSONSlice(*in.Images)
	}
	if in.BeforeImages != nil {
		p.BeforeImages = datatypes.NewJSONSlice(*in.BeforeImages)
	}
	if in.AfterImages != nil {
		p.AfterImages = datatypes.NewJSONSlice(*in.AfterImages)
	}
	if in.Highlights != nil {
		p.Highlights = datatypes.NewJSONSlice(*in.Highlights)
	}
}

func (p *Portfolio) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Summary = strings.TrimSpace(p.Summary)
	p.Images = nonNil(p.Images)
	p.BeforeImages = nonNil(p.BeforeImages)
	p.AfterImages = nonNil(p.AfterImages)
	p.Highlights = nonNil(p.Highlights)
	p.Services = nonNil(p.Services)
}

// ComputeDuration sets DurationWeeks when both dates are known.
func (p *Portfolio) ComputeDuration() {
	p.DurationWeeks = nil
	if p.StartDate == nil || p.CompletionDate == nil {
		return
	}
	weeks := int(p.CompletionDate.Sub(*p.StartDate) / (7 * 24 * time.Hour))
	p.DurationWeeks = &weeks
}
