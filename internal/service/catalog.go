package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/utils/validation"
)

const relatedLimit = 3

// CatalogService manages the landscaping services offered on the site.
type CatalogService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewCatalogService(db *gorm.DB, log *logrus.Entry) *CatalogService {
	return &CatalogService{db: db, log: log}
}

type CatalogFilter struct {
	Category string
	Featured bool
}

// ListActive returns active services by display order then name.
func (s *CatalogService) ListActive(ctx context.Context, f CatalogFilter) ([]model.Service, error) {
	q := s.db.WithContext(ctx).
		Where("active = ?", true).
		Preload("RelatedServices", selectColumns("id", "name", "slug"))
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}

	services := []model.Service{}
	if err := q.Order("display_order ASC").Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	for i := range services {
		services[i].Normalize()
	}
	return services, nil
}

// GetBySlug returns an active service with its related services and up to three
// published projects that reference it.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*model.Service, error) {
	var svc model.Service
	err := s.db.WithContext(ctx).
		Preload("RelatedServices", selectColumns("id", "name", "slug", "image")).
		Where("slug = ? AND active = ?", slug, true).
		First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: "Service", Key: "slug", Value: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("find service %q: %w", slug, err)
	}

	projects := []model.PortfolioSummary{}
	err = s.db.WithContext(ctx).
		Select("portfolios.id", "portfolios.title", "portfolios.slug", "portfolios.description",
			"portfolios.main_image", "portfolios.category", "portfolios.location").
		Joins("JOIN portfolio_services ON portfolio_services.portfolio_id = portfolios.id").
		Where("portfolio_services.service_id = ? AND portfolios.published = ?", svc.ID, true).
		Order("portfolios.created_at DESC").
		Limit(relatedLimit).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("find projects of service %d: %w", svc.ID, err)
	}

	svc.Normalize()
	svc.PortfolioProjects = projects
	return &svc, nil
}

// Categories returns the distinct categories in use.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&model.Service{}).
		Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list service categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*model.Service, error) {
	var svc model.Service
	q := s.db.Preload("RelatedServices", selectColumns("id", "name", "slug"))
	if err := findByID(ctx, q, "Service", id, &svc); err != nil {
		return nil, err
	}
	svc.Normalize()
	return &svc, nil
}

func (s *CatalogService) Create(ctx context.Context, in *model.ServiceInput) (*model.Service, error) {
	svc := model.NewService()
	in.Apply(svc)
	svc.Normalize()

	if err := s.prepare(ctx, svc, 0); err != nil {
		return nil, err
	}
	if in.RelatedServices != nil {
		if err := checkRefs(ctx, s.db, "services", "relatedServices", *in.RelatedServices); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(svc).Error; err != nil {
			return err
		}
		if in.RelatedServices != nil {
			return replaceRelatedServices(tx, svc.ID, *in.RelatedServices)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("create service", err)
	}

	s.log.WithFields(logrus.Fields{"id": svc.ID, "slug": svc.Slug}).Info("service created")
	return s.Get(ctx, svc.ID)
}

// Update merges in and re-derives the slug when the name changed.
func (s *CatalogService) Update(ctx context.Context, id uint, in *model.ServiceInput) (*model.Service, error) {
	var svc model.Service
	if err := findByID(ctx, s.db, "Service", id, &svc); err != nil {
		return nil, err
	}

	in.Apply(&svc)
	svc.Normalize()
	if err := s.prepare(ctx, &svc, id); err != nil {
		return nil, err
	}
	if in.RelatedServices != nil {
		if err := checkRefs(ctx, s.db, "services", "relatedServices", *in.RelatedServices); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&svc).Error; err != nil {
			return err
		}
		if in.RelatedServices != nil {
			return replaceRelatedServices(tx, id, *in.RelatedServices)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("update service", err)
	}
	return s.Get(ctx, id)
}

// prepare derives the slug, validates svc and checks the unique name and slug.
func (s *CatalogService) prepare(ctx context.Context, svc *model.Service, id uint) error {
	if err := validation.Struct(svc); err != nil {
		return err
	}
	slug, err := deriveSlug(svc.Name, "name")
	if err != nil {
		return err
	}
	svc.Slug = slug
	if err := ensureUnique(ctx, s.db, &model.Service{}, "name", svc.Name, id); err != nil {
		return err
	}
	return ensureUnique(ctx, s.db, &model.Service{}, "slug", svc.Slug, id)
}

// Delete removes the service and its own related-service rows. Quotes, projects and
// posts that reference it keep the dangling id.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := mustExist(ctx, s.db, "Service", &model.Service{}, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&model.ServiceRelation{}).Error; err != nil {
			return fmt.Errorf("delete service relations %d: %w", id, err)
		}
		if err := tx.Delete(&model.Service{}, id).Error; err != nil {
			return fmt.Errorf("delete service %d: %w", id, err)
		}
		return nil
	})
}

func replaceRelatedServices(tx *gorm.DB, id uint, related []uint) error {
	if err := tx.Where("service_id = ?", id).Delete(&model.ServiceRelation{}).Error; err != nil {
		return err
	}
	rows := make([]model.ServiceRelation, 0, len(related))
	for _, rid := range uniqueIDs(related) {
		if rid == id {
			continue
		}
		rows = append(rows, model.ServiceRelation{ServiceID: id, RelatedServiceID: rid})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
