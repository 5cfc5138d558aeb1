package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusArchived  = "archived"
)

var BlogCategories = []string{
	"landscaping-tips", "garden-ideas", "maintenance", "seasonal", "projects", "trends", "company-news", "other",
}

type Blog struct {
	Base
	Title           string                      `json:"title" gorm:"size:200;not null" validate:"required,max=200"`
	Slug            string                      `json:"slug" gorm:"size:240;uniqueIndex;not null"`
	Content         string                      `json:"content" gorm:"type:text;not null" validate:"required"`
	Excerpt         string                      `json:"excerpt,omitempty" validate:"max=300"`
	AuthorID        uint                        `json:"-" gorm:"index;not null" validate:"required"`
	Author          *UserSummary                `json:"author,omitempty" gorm:"foreignKey:AuthorID;-:migration"`
	FeaturedImage   string                      `json:"featuredImage,omitempty"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	Category        string                      `json:"category" gorm:"size:30;index" validate:"required,oneof=landscaping-tips garden-ideas maintenance seasonal projects trends company-news other"`
	Status          string                      `json:"status" gorm:"size:20;index;not null" validate:"required,oneof=draft published archived"`
	PublishedAt     *time.Time                  `json:"publishedAt,omitempty" gorm:"index"`
	IsFeature       bool                        `json:"isFeature"`
	MetaTitle       string                      `json:"metaTitle,omitempty" validate:"max=70"`
	MetaDescription string                      `json:"metaDescription,omitempty" validate:"max=160"`
	RelatedPosts    []BlogSummary               `json:"relatedPosts" gorm:"many2many:blog_related;joinForeignKey:BlogID;joinReferences:RelatedBlogID;-:migration"`
	RelatedServices []ServiceSummary            `json:"relatedServices" gorm:"many2many:blog_services;joinForeignKey:BlogID;joinReferences:ServiceID;-:migration"`
}

// BlogRelation is the join row behind Blog.RelatedPosts.
type BlogRelation struct {
	BlogID        uint `gorm:"primaryKey"`
	RelatedBlogID uint `gorm:"primaryKey"`
}

func (BlogRelation) TableName() string { return "blog_related" }

// BlogService is the join row behind Blog.RelatedServices.
type BlogService struct {
	BlogID    uint `gorm:"primaryKey"`
	ServiceID uint `gorm:"primaryKey;index"`
}

func (BlogService) TableName() string { return "blog_services" }

// BlogInput is the create/update payload. Pointer fields are optional on update.
type BlogInput struct {
	Title           *string   `json:"title" form:"title"`
	Content         *string   `json:"content" form:"content"`
	Excerpt         *string   `json:"excerpt" form:"excerpt"`
	FeaturedImage   *string   `json:"featuredImage" form:"featuredImage"`
	Tags            *[]string `json:"tags" form:"tags"`
	Category        *string   `json:"category" form:"category"`
	Status          *string   `json:"status" form:"status"`
	IsFeature       *bool     `json:"isFeature" form:"isFeature"`
	MetaTitle       *string   `json:"metaTitle" form:"metaTitle"`
	MetaDescription *string   `json:"metaDescription" form:"metaDescription"`
	RelatedPosts    *[]uint   `json:"relatedPosts" form:"relatedPosts"`
	RelatedServices *[]uint   `json:"relatedServices" form:"relatedServices"`
}

// NewBlog returns a Blog carrying the schema defaults.
func NewBlog() *Blog {
	return &Blog{Category: "landscaping-tips", Status: BlogStatusDraft}
}

func (in *BlogInput) Apply(b *Blog) {
	setIf(&b.Title, in.Title)
	setIf(&b.Content, in.Content)
	setIf(&b.Excerpt, in.Excerpt)
	setIf(&b.FeaturedImage, in.FeaturedImage)
	setIf(&b.Category, in.Category)
	setIf(&b.Status, in.Status)
	setIf(&b.IsFeature, in.IsFeature)
	setIf(&b.MetaTitle, in.MetaTitle)
	setIf(&b.MetaDescription, in.MetaDescription)
	if in.Tags != nil {
		tags := make([]string, 0, len(*in.Tags))
		for _, t := range *in.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		b.Tags = datatypes.NewJSONSlice(tags)
	}
}

func (b *Blog) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Excerpt = strings.TrimSpace(b.Excerpt)
	b.MetaTitle = strings.TrimSpace(b.MetaTitle)
	b.MetaDescription = strings.TrimSpace(b.MetaDescription)
	b.Tags = nonNil(b.Tags)
	b.RelatedPosts = nonNil(b.RelatedPosts)
	b.RelatedServices = nonNil(b.RelatedServices)
}
