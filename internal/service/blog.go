package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/utils/validation"
)

var blogSearchFields = []string{"title", "excerpt", "content"}

const newestPublishedFirst = "published_at DESC, id DESC"

type BlogService struct {
	db  *gorm.DB
	log *logrus.Entry
	now func() time.Time
}

func NewBlogService(db *gorm.DB, log *logrus.Entry) *BlogService {
	return &BlogService{db: db, log: log, now: time.Now}
}

// BlogQuery filters the public post listing.
type BlogQuery struct {
	ListParams
	Category string
	Tag      string
}

func (s *BlogService) withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", selectColumns("id", "name"))
}

// ListPublished returns published posts, newest publication first.
func (s *BlogService) ListPublished(ctx context.Context, q BlogQuery) (*Page[model.Blog], error) {
	q.normalize()
	filters := []func(*gorm.DB) *gorm.DB{
		StatusIs(model.BlogStatusPublished),
		MatchesAny(blogSearchFields, q.Search),
		func(db *gorm.DB) *gorm.DB {
			if q.Category == "" || q.Category == "all" {
				return db
			}
			return db.Where("category = ?", q.Category)
		},
		func(db *gorm.DB) *gorm.DB {
			if q.Tag == "" {
				return db
			}
			return db.Where(datatypes.JSONArrayQuery("tags").Contains(q.Tag))
		},
	}
	page, err := paginate[model.Blog](s.db.WithContext(ctx), q.ListParams, filters, newestPublishedFirst, s.withAuthor)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	normalizeBlogs(page.Data)
	return page, nil
}

// ListAll is the admin listing over every status.
func (s *BlogService) ListAll(ctx context.Context, p ListParams) (*Page[model.Blog], error) {
	p.normalize()
	filters := []func(*gorm.DB) *gorm.DB{StatusIs(p.Status), MatchesAny(blogSearchFields, p.Search)}
	page, err := paginate[model.Blog](s.db.WithContext(ctx), p, filters, newestFirst, s.withAuthor)
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	normalizeBlogs(page.Data)
	return page, nil
}

func normalizeBlogs(posts []model.Blog) {
	for i := range posts {
		posts[i].Normalize()
	}
}

// GetPublishedBySlug returns a published post with its author, related published posts
// and related services.
func (s *BlogService) GetPublishedBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	var b model.Blog
	err := s.withAuthor(s.db.WithContext(ctx)).
		Preload("RelatedPosts", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "slug", "excerpt", "featured_image", "published_at").
				Where("status = ?", model.BlogStatusPublished)
		}).
		Preload("RelatedServices", selectColumns("id", "name", "slug")).
		Where("slug = ? AND status = ?", slug, model.BlogStatusPublished).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: "Blog post", Key: "slug", Value: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("find post %q: %w", slug, err)
	}
	b.Normalize()
	return &b, nil
}

// Categories returns the distinct categories of published posts.
func (s *BlogService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&model.Blog{}).
		Where("status = ?", model.BlogStatusPublished).
		Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list blog categories: %w", err)
	}
	return categories, nil
}

func (s *BlogService) Get(ctx context.Context, id uint) (*model.Blog, error) {
	var b model.Blog
	q := s.withAuthor(s.db).
		Preload("RelatedPosts", selectColumns("id", "title", "slug", "excerpt", "featured_image", "published_at")).
		Preload("RelatedServices", selectColumns("id", "name", "slug"))
	if err := findByID(ctx, q, "Blog post", id, &b); err != nil {
		return nil, err
	}
	b.Normalize()
	return &b, nil
}

// Create stores a post written by authorID.
func (s *BlogService) Create(ctx context.Context, authorID uint, in *model.BlogInput) (*model.Blog, error) {
	b := model.NewBlog()
	in.Apply(b)
	b.AuthorID = authorID
	b.Normalize()
	s.stampPublished(b, "")

	if err := s.prepare(ctx, b, 0, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		return replaceBlogRelations(tx, b.ID, in)
	})
	if err != nil {
		return nil, dbErr("create post", err)
	}

	s.log.WithFields(logrus.Fields{"id": b.ID, "slug": b.Slug, "status": b.Status}).Info("post created")
	return s.Get(ctx, b.ID)
}

// Update merges in, re-derives the slug and stamps publishedAt on the first publish.
func (s *BlogService) Update(ctx context.Context, id uint, in *model.BlogInput) (*model.Blog, error) {
	var b model.Blog
	if err := findByID(ctx, s.db, "Blog post", id, &b); err != nil {
		return nil, err
	}

	previous := b.Status
	in.Apply(&b)
	b.Normalize()
	s.stampPublished(&b, previous)

	if err := s.prepare(ctx, &b, id, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&b).Error; err != nil {
			return err
		}
		return replaceBlogRelations(tx, id, in)
	})
	if err != nil {
		return nil, dbErr("update post", err)
	}
	return s.Get(ctx, id)
}

// stampPublished sets publishedAt when the status moves to published for the first time.
func (s *BlogService) stampPublished(b *model.Blog, previous string) {
	if b.Status == model.BlogStatusPublished && previous != model.BlogStatusPublished && b.PublishedAt == nil {
		now := s.now().UTC()
		b.PublishedAt = &now
	}
}

func (s *BlogService) prepare(ctx context.Context, b *model.Blog, id uint, in *model.BlogInput) error {
	if err := validation.Struct(b); err != nil {
		return err
	}
	slug, err := deriveSlug(b.Title, "title")
	if err != nil {
		return err
	}
	b.Slug = slug
	if err := ensureUnique(ctx, s.db, &model.Blog{}, "slug", b.Slug, id); err != nil {
		return err
	}
	if err := checkRefs(ctx, s.db, "users", "author", []uint{b.AuthorID}); err != nil {
		return err
	}
	if in.RelatedPosts != nil {
		if err := checkRefs(ctx, s.db, "blogs", "relatedPosts", *in.RelatedPosts); err != nil {
			return err
		}
	}
	if in.RelatedServices != nil {
		return checkRefs(ctx, s.db, "services", "relatedServices", *in.RelatedServices)
	}
	return nil
}

func (s *BlogService) Delete(ctx context.Context, id uint) error {
	if err := mustExist(ctx, s.db, "Blog post", &model.Blog{}, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogRelation{}).Error; err != nil {
			return fmt.Errorf("delete post relations %d: %w", id, err)
		}
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogService{}).Error; err != nil {
			return fmt.Errorf("delete post services %d: %w", id, err)
		}
		if err := tx.Delete(&model.Blog{}, id).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		return nil
	})
}

// replaceBlogRelations rewrites the join rows named in in; nil lists are left untouched.
func replaceBlogRelations(tx *gorm.DB, id uint, in *model.BlogInput) error {
	if in.RelatedPosts != nil {
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogRelation{}).Error; err != nil {
			return err
		}
		rows := []model.BlogRelation{}
		for _, rid := range uniqueIDs(*in.RelatedPosts) {
			if rid != id {
				rows = append(rows, model.BlogRelation{BlogID: id, RelatedBlogID: rid})
			}
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
	}
	if in.RelatedServices != nil {
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogService{}).Error; err != nil {
			return err
		}
		rows := []model.BlogService{}
		for _, sid := range uniqueIDs(*in.RelatedServices) {
			rows = append(rows, model.BlogService{BlogID: id, ServiceID: sid})
		}
		if len(rows) > 0 {
			return tx.Create(&rows).Error
		}
	}
	return nil
}
