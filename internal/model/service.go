package model

import (
	"strings"

	"gorm.io/datatypes"
)

var ServiceCategories = []string{
	"design", "installation", "maintenance", "hardscaping", "softscaping", "irrigation", "lighting", "other",
}

type Feature struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type FAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type PriceRange struct {
	Min  *float64 `json:"min,omitempty" gorm:"column:min" validate:"omitempty,gte=0"`
	Max  *float64 `json:"max,omitempty" gorm:"column:max" validate:"omitempty,gte=0"`
	Unit string   `json:"unit" gorm:"column:unit"`
}

type Service struct {
	Base
	Name             string                       `json:"name" gorm:"size:100;uniqueIndex;not null" validate:"required,max=100"`
	Slug             string                       `json:"slug" gorm:"size:160;uniqueIndex;not null"`
	Description      string                       `json:"description" gorm:"type:text;not null" validate:"required"`
	ShortDescription string                       `json:"shortDescription,omitempty" validate:"max=200"`
	Icon             string                       `json:"icon"`
	Image            string                       `json:"image,omitempty"`
	Features         datatypes.JSONSlice[Feature] `json:"features" validate:"dive"`
	Benefits         datatypes.JSONSlice[string]  `json:"benefits"`
	FAQ              datatypes.JSONSlice[FAQ]     `json:"faq" gorm:"column:faq" validate:"dive"`
	PriceRange       PriceRange                   `json:"priceRange" gorm:"embedded;embeddedPrefix:price_"`
	Order            int                          `json:"order" gorm:"column:display_order;index"`
	Featured         bool                         `json:"featured"`
	Active           bool                         `json:"active" gorm:"index"`
	Category         string                       `json:"category" gorm:"size:30;index" validate:"required,oneof=design installation maintenance hardscaping softscaping irrigation lighting other"`
	RelatedServices  []ServiceSummary             `json:"relatedServices" gorm:"many2many:service_related;joinForeignKey:ServiceID;joinReferences:RelatedServiceID;-:migration"`
	SeoKeywords      datatypes.JSONSlice[string]  `json:"seoKeywords"`
	SeoDescription   string                       `json:"seoDescription,omitempty" validate:"max=160"`

	// Filled by the catalog on single-service reads.
	PortfolioProjects []PortfolioSummary `json:"portfolioProjects,omitempty" gorm:"-"`
}

// ServiceRelation is the join row behind Service.RelatedServices.
type ServiceRelation struct {
	ServiceID        uint `gorm:"primaryKey"`
	RelatedServiceID uint `gorm:"primaryKey"`
}

func (ServiceRelation) TableName() string { return "service_related" }

// ServiceInput is the create/update payload. Pointer fields are optional on update.
type ServiceInput struct {
	Name             *string     `json:"name" form:"name"`
	Description      *string     `json:"description" form:"description"`
	ShortDescription *string     `json:"shortDescription" form:"shortDescription"`
	Icon             *string     `json:"icon" form:"icon"`
	Image            *string     `json:"image" form:"image"`
	Features         *[]Feature  `json:"features" form:"features"`
	Benefits         *[]string   `json:"benefits" form:"benefits"`
	FAQ              *[]FAQ      `json:"faq" form:"faq"`
	PriceRange       *PriceRange `json:"priceRange" form:"priceRange"`
	Order            *int        `json:"order" form:"order"`
	Featured         *bool       `json:"featured" form:"featured"`
	Active           *bool       `json:"active" form:"active"`
	Category         *string     `json:"category" form:"category"`
	RelatedServices  *[]uint     `json:"relatedServices" form:"relatedServices"`
	SeoKeywords      *[]string   `json:"seoKeywords" form:"seoKeywords"`
	SeoDescription   *string     `json:"seoDescription" form:"seoDescription"`
}

// NewService returns a Service carrying the schema defaults.
func NewService() *Service {
	return &Service{
		Icon:       "fa-leaf",
		Active:     true,
		Category:   "other",
		PriceRange: PriceRange{Unit: "per project"},
	}
}

func (in *ServiceInput) Apply(s *Service) {
	setIf(&s.Name, in.Name)
	setIf(&s.Description, in.Description)
	setIf(&s.ShortDescription, in.ShortDescription)
	setIf(&s.Icon, in.Icon)
	setIf(&s.Image, in.Image)
	setIf(&s.Order, in.Order)
	setIf(&s.Featured, in.Featured)
	setIf(&s.Active, in.Active)
	setIf(&s.Category, in.Category)
	setIf(&s.SeoDescription, in.SeoDescription)
	if in.PriceRange != nil {
		s.PriceRange = *in.PriceRange
		if s.PriceRange.Unit == "" {
			s.PriceRange.Unit = "per project"
		}
	}
	if in.Features != nil {
		s.Features = datatypes.NewJSONSlice(*in.Features)
	}
	if in.Benefits != nil {
		s.Benefits = datatypes.NewJSONSlice(*in.Benefits)
	}
	if in.FAQ != nil {
		s.FAQ = datatypes.NewJSONSlice(*in.FAQ)
	}
	if in.SeoKeywords != nil {
		s.SeoKeywords = datatypes.NewJSONSlice(*in.SeoKeywords)
	}
}

func (s *Service) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	s.ShortDescription = strings.TrimSpace(s.ShortDescription)
	s.SeoDescription = strings.TrimSpace(s.SeoDescription)
	if s.Icon == "" {
		s.Icon = "fa-leaf"
	}
	s.Features = nonNil(s.Features)
	s.Benefits = nonNil(s.Benefits)
	s.FAQ = nonNil(s.FAQ)
	s.SeoKeywords = nonNil(s.SeoKeywords)
	s.RelatedServices = nonNil(s.RelatedServices)
}
