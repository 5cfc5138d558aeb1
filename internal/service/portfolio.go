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

// PortfolioService manages completed-project showcase entries.
type PortfolioService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewPortfolioService(db *gorm.DB, log *logrus.Entry) *PortfolioService {
	return &PortfolioService{db: db, log: log}
}

type PortfolioFilter struct {
	Category string
	Featured bool
}

// ListPublished returns published projects, newest first.
func (s *PortfolioService) ListPublished(ctx context.Context, f PortfolioFilter) ([]model.Portfolio, error) {
	q := s.db.WithContext(ctx).
		Where("published = ?", true).
		Preload("Services", selectColumns("id", "name", "slug"))
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}

	projects := []model.Portfolio{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	for i := range projects {
		projects[i].Normalize()
		projects[i].ComputeDuration()
	}
	return projects, nil
}

// GetBySlug returns a published project with up to three related projects that share
// its category or one of its services.
func (s *PortfolioService) GetBySlug(ctx context.Context, slug string) (*model.Portfolio, error) {
	var p model.Portfolio
	err := s.db.WithContext(ctx).
		Preload("Services", selectColumns("id", "name", "slug", "description")).
		Where("slug = ? AND published = ?", slug, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: "Project", Key: "slug", Value: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("find project %q: %w", slug, err)
	}

	serviceIDs := make([]uint, 0, len(p.Services))
	for _, svc := range p.Services {
		serviceIDs = append(serviceIDs, svc.ID)
	}

	match := s.db.Where("category = ?", p.Category)
	if len(serviceIDs) > 0 {
		match = match.Or("id IN (?)", s.db.Model(&model.PortfolioService{}).
			Select("portfolio_id").Where("service_id IN ?", serviceIDs))
	}

	related := []model.PortfolioSummary{}
	err = s.db.WithContext(ctx).
		Select("id", "title", "slug", "description", "main_image", "category", "location").
		Where("id <> ? AND published = ?", p.ID, true).
		Where(match).
		Order("created_at DESC").
		Limit(relatedLimit).
		Find(&related).Error
	if err != nil {
		return nil, fmt.Errorf("find projects related to %d: %w", p.ID, err)
	}

	p.Normalize()
	p.ComputeDuration()
	p.RelatedProjects = related
	return &p, nil
}

// Categories returns the distinct categories of published projects.
func (s *PortfolioService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&model.Portfolio{}).
		Where("published = ?", true).
		Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list portfolio categories: %w", err)
	}
	return categories, nil
}

func (s *PortfolioService) Get(ctx context.Context, id uint) (*model.Portfolio, error) {
	var p model.Portfolio
	q := s.db.Preload("Services", selectColumns("id", "name", "slug"))
	if err := findByID(ctx, q, "Project", id, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	p.ComputeDuration()
	return &p, nil
}

func (s *PortfolioService) Create(ctx context.Context, in *model.PortfolioInput) (*model.Portfolio, error) {
	p := model.NewPortfolio()
	in.Apply(p)
	p.Normalize()
	if err := s.prepare(ctx, p, 0, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		if in.Services != nil {
			return replacePortfolioServices(tx, p.ID, *in.Services)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("create project", err)
	}

	s.log.WithFields(logrus.Fields{"id": p.ID, "slug": p.Slug}).Info("project created")
	return s.Get(ctx, p.ID)
}

// Update merges in. Gallery images in appendImages are added after the stored ones.
func (s *PortfolioService) Update(ctx context.Context, id uint, in *model.PortfolioInput, appendImages []string) (*model.Portfolio, error) {
	var p model.Portfolio
	if err := findByID(ctx, s.db, "Project", id, &p); err != nil {
		return nil, err
	}

	in.Apply(&p)
	if len(appendImages) > 0 {
		p.Images = append(append([]string{}, p.Images...), appendImages...)
	}
	p.Normalize()
	if err := s.prepare(ctx, &p, id, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		if in.Services != nil {
			return replacePortfolioServices(tx, id, *in.Services)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("update project", err)
	}
	return s.Get(ctx, id)
}

func (s *PortfolioService) prepare(ctx context.Context, p *model.Portfolio, id uint, in *model.PortfolioInput) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.StartDate != nil && p.CompletionDate != nil && p.CompletionDate.Before(*p.StartDate) {
		return apperrors.NewValidation("completionDate", "Completion date cannot be before start date")
	}
	slug, err := deriveSlug(p.Title, "title")
	if err != nil {
		return err
	}
	p.Slug = slug
	if err := ensureUnique(ctx, s.db, &model.Portfolio{}, "slug", p.Slug, id); err != nil {
		return err
	}
	if in.Services != nil {
		return checkRefs(ctx, s.db, "services", "services", *in.Services)
	}
	return nil
}

func (s *PortfolioService) Delete(ctx context.Context, id uint) error {
	if err := mustExist(ctx, s.db, "Project", &model.Portfolio{}, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", id).Delete(&model.PortfolioService{}).Error; err != nil {
			return fmt.Errorf("delete project services %d: %w", id, err)
		}
		if err := tx.Delete(&model.Portfolio{}, id).Error; err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		return nil
	})
}

func replacePortfolioServices(tx *gorm.DB, id uint, services []uint) error {
	if err := tx.Where("portfolio_id = ?", id).Delete(&model.PortfolioService{}).Error; err != nil {
		return err
	}
	ids := uniqueIDs(services)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]model.PortfolioService, 0, len(ids))
	for _, sid := range ids {
		rows = append(rows, model.PortfolioService{PortfolioID: id, ServiceID: sid})
	}
	return tx.Create(&rows).Error
}
