package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sphinx_backend/internal/metrics"
	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/utils/validation"
)

var quoteSearchFields = []string{"name", "email", "phone", "description"}

type QuoteService struct {
	db       *gorm.DB
	notifier Notifier
	log      *logrus.Entry
}

func NewQuoteService(db *gorm.DB, notifier Notifier, log *logrus.Entry) *QuoteService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &QuoteService{db: db, notifier: notifier, log: log}
}

// Submit stores a public quote request with status "new". Fields only an administrator
// manages are cleared. The operator notification and the confirmation are attempted independently.
func (s *QuoteService) Submit(ctx context.Context, q *model.Quote, meta RequestMeta) (*model.Quote, []Delivery, error) {
	q.ID = 0
	q.Status = model.QuoteStatusNew
	q.AssignedToID = nil
	q.AssignedTo = nil
	q.EstimatedCost = nil
	q.FinalQuote = ""
	q.Notes = ""
	q.SiteVisitDate = nil
	q.IPAddress = meta.IPAddress
	q.UserAgent = meta.UserAgent
	q.Normalize()

	if err := validation.Struct(q); err != nil {
		return nil, nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}
		return replaceServiceRequests(tx, q)
	})
	if err != nil {
		return nil, nil, dbErr("create quote", err)
	}

	metrics.RecordSubmission("quote")
	s.log.WithFields(logrus.Fields{"id": q.ID, "email": q.Email}).Info("quote submitted")

	// service names for the operator email
	if full, err := s.Get(ctx, q.ID); err == nil {
		q = full
	}

	deliveries := []Delivery{
		deliver(ctx, s.log, NotifyQuoteAdmin, "admin", func(ctx context.Context) error {
			return s.notifier.SendQuoteNotification(ctx, q)
		}),
		deliver(ctx, s.log, NotifyQuoteConfirm, q.Email, func(ctx context.Context) error {
			return s.notifier.SendQuoteConfirmation(ctx, q)
		}),
	}
	return q, deliveries, nil
}

// replaceServiceRequests rewrites the ordered service rows of q.
func replaceServiceRequests(tx *gorm.DB, q *model.Quote) error {
	if err := tx.Where("quote_id = ?", q.ID).Delete(&model.QuoteServiceRequest{}).Error; err != nil {
		return err
	}
	if len(q.ServicesRequested) == 0 {
		return nil
	}
	for i := range q.ServicesRequested {
		q.ServicesRequested[i].ID = 0
		q.ServicesRequested[i].QuoteID = q.ID
		q.ServicesRequested[i].Position = i
		q.ServicesRequested[i].Service = nil
	}
	return tx.Omit(clause.Associations).Create(&q.ServicesRequested).Error
}

func (s *QuoteService) populated(db *gorm.DB) *gorm.DB {
	return db.
		Preload("AssignedTo", selectColumns("id", "name", "email")).
		Preload("ServicesRequested", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("ServicesRequested.Service", selectColumns("id", "name"))
}

// List returns quotes newest first, filtered by status and a search over name, email, phone and description.
func (s *QuoteService) List(ctx context.Context, p ListParams) (*Page[model.Quote], error) {
	p.normalize()
	filters := []func(*gorm.DB) *gorm.DB{StatusIs(p.Status), MatchesAny(quoteSearchFields, p.Search)}
	page, err := paginate[model.Quote](s.db.WithContext(ctx), p, filters, newestFirst, s.populated)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return page, nil
}

func (s *QuoteService) Get(ctx context.Context, id uint) (*model.Quote, error) {
	var q model.Quote
	if err := findByID(ctx, s.populated(s.db), "Quote", id, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Update merges patch into the stored quote. When the status moves to one of the
// notifying states, exactly one status email goes to the submitter before the write.
func (s *QuoteService) Update(ctx context.Context, id uint, patch *model.QuotePatch) (*model.Quote, []Delivery, error) {
	var q model.Quote
	if err := findByID(ctx, s.db, "Quote", id, &q); err != nil {
		return nil, nil, err
	}

	previous := q.Status
	servicesChanged := patch.Apply(&q)
	q.Normalize()
	if err := validation.Struct(&q); err != nil {
		return nil, nil, err
	}
	if err := checkAssignee(ctx, s.db, q.AssignedToID); err != nil {
		return nil, nil, err
	}

	var deliveries []Delivery
	if q.Status != previous {
		metrics.RecordQuoteStatusChange(q.Status)
		if _, notify := model.QuoteStatusMessage(q.Status); notify {
			status := q.Status
			deliveries = append(deliveries, deliver(ctx, s.log, NotifyQuoteStatus, q.Email, func(ctx context.Context) error {
				return s.notifier.SendQuoteStatusUpdate(ctx, &q, status)
			}))
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&q).Error; err != nil {
			return err
		}
		if servicesChanged {
			return replaceServiceRequests(tx, &q)
		}
		return nil
	})
	if err != nil {
		return nil, deliveries, dbErr("update quote", err)
	}

	updated, err := s.Get(ctx, id)
	return updated, deliveries, err
}

func (s *QuoteService) Delete(ctx context.Context, id uint) error {
	if err := mustExist(ctx, s.db, "Quote", &model.Quote{}, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&model.QuoteServiceRequest{}).Error; err != nil {
			return fmt.Errorf("delete quote services %d: %w", id, err)
		}
		if err := tx.Delete(&model.Quote{}, id).Error; err != nil {
			return fmt.Errorf("delete quote %d: %w", id, err)
		}
		return nil
	})
}
