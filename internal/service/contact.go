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

var contactSearchFields = []string{"name", "email", "message"}

type ContactService struct {
	db       *gorm.DB
	notifier Notifier
	log      *logrus.Entry
}

func NewContactService(db *gorm.DB, notifier Notifier, log *logrus.Entry) *ContactService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ContactService{db: db, notifier: notifier, log: log}
}

// Submit stores a public inquiry with status "new" and then attempts the operator
// notification and the submitter confirmation. Send failures only show up in the deliveries.
func (s *ContactService) Submit(ctx context.Context, c *model.Contact, meta RequestMeta) (*model.Contact, []Delivery, error) {
	c.ID = 0
	c.Status = model.ContactStatusNew
	c.Notes = ""
	c.AssignedToID = nil
	c.AssignedTo = nil
	c.IPAddress = meta.IPAddress
	c.UserAgent = meta.UserAgent
	c.Normalize()

	if err := validation.Struct(c); err != nil {
		return nil, nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, nil, dbErr("create contact", err)
	}

	metrics.RecordSubmission("contact")
	s.log.WithFields(logrus.Fields{"id": c.ID, "email": c.Email}).Info("contact submitted")

	deliveries := []Delivery{
		deliver(ctx, s.log, NotifyContactAdmin, "admin", func(ctx context.Context) error {
			return s.notifier.SendContactNotification(ctx, c)
		}),
		deliver(ctx, s.log, NotifyContactConfirm, c.Email, func(ctx context.Context) error {
			return s.notifier.SendContactConfirmation(ctx, c)
		}),
	}
	return c, deliveries, nil
}

func (s *ContactService) withAssignee(db *gorm.DB) *gorm.DB {
	return db.Preload("AssignedTo", selectColumns("id", "name", "email"))
}

// List returns contacts newest first, filtered by status and a search over name, email and message.
func (s *ContactService) List(ctx context.Context, p ListParams) (*Page[model.Contact], error) {
	p.normalize()
	filters := []func(*gorm.DB) *gorm.DB{StatusIs(p.Status), MatchesAny(contactSearchFields, p.Search)}
	page, err := paginate[model.Contact](s.db.WithContext(ctx), p, filters, newestFirst, s.withAssignee)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return page, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*model.Contact, error) {
	var c model.Contact
	if err := findByID(ctx, s.withAssignee(s.db), "Contact", id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update merges patch into the stored contact and re-validates the result.
func (s *ContactService) Update(ctx context.Context, id uint, patch *model.ContactPatch) (*model.Contact, error) {
	var c model.Contact
	if err := findByID(ctx, s.db, "Contact", id, &c); err != nil {
		return nil, err
	}

	patch.Apply(&c)
	c.Normalize()
	if err := validation.Struct(&c); err != nil {
		return nil, err
	}
	if err := checkAssignee(ctx, s.db, c.AssignedToID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&c).Error; err != nil {
		return nil, dbErr("update contact", err)
	}

	return s.Get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if err := mustExist(ctx, s.db, "Contact", &model.Contact{}, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&model.Contact{}, id).Error; err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	return nil
}
