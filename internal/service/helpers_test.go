package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/database"
	"sphinx_backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logger.Discard()
	db, err := database.Open("sqlite://:memory:", log)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(db, log, model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testLog() *logrus.Entry {
	return logger.Component(logger.Discard(), "test")
}

type sentMessage struct {
	Kind   string
	To     string
	Status string
}

// recordingNotifier remembers every send and fails the kinds listed in fail.
type recordingNotifier struct {
	sent []sentMessage
	fail map[string]bool
}

func newRecordingNotifier(failKinds ...string) *recordingNotifier {
	n := &recordingNotifier{fail: map[string]bool{}}
	for _, k := range failKinds {
		n.fail[k] = true
	}
	return n
}

func (n *recordingNotifier) record(kind, to, status string) error {
	n.sent = append(n.sent, sentMessage{Kind: kind, To: to, Status: status})
	if n.fail[kind] {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (n *recordingNotifier) kinds() []string {
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Kind)
	}
	return out
}

func (n *recordingNotifier) SendContactNotification(_ context.Context, c *model.Contact) error {
	return n.record(NotifyContactAdmin, "admin", "")
}

func (n *recordingNotifier) SendContactConfirmation(_ context.Context, c *model.Contact) error {
	return n.record(NotifyContactConfirm, c.Email, "")
}

func (n *recordingNotifier) SendQuoteNotification(_ context.Context, q *model.Quote) error {
	return n.record(NotifyQuoteAdmin, "admin", "")
}

func (n *recordingNotifier) SendQuoteConfirmation(_ context.Context, q *model.Quote) error {
	return n.record(NotifyQuoteConfirm, q.Email, "")
}

func (n *recordingNotifier) SendQuoteStatusUpdate(_ context.Context, q *model.Quote, status string) error {
	return n.record(NotifyQuoteStatus, q.Email, status)
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *model.User {
	t.Helper()
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)
	u := &model.User{Name: name, Email: email, Password: hashed, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedService(t *testing.T, db *gorm.DB, name string, mutate ...func(*model.Service)) *model.Service {
	t.Helper()
	svc := model.NewService()
	svc.Name = name
	svc.Description = name + " description"
	svc.Normalize()
	svc.Slug, _ = deriveSlug(name, "name")
	for _, m := range mutate {
		m(svc)
	}
	require.NoError(t, db.Omit("RelatedServices").Create(svc).Error)
	return svc
}

// at returns a fixed creation time n minutes after a base instant.
func at(n int) time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
