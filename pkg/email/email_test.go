package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/config"
	"sphinx_backend/pkg/logger"
)

type captureSender struct {
	sent []*Message
	err  error
}

func (c *captureSender) Name() string { return "capture" }

func (c *captureSender) Send(_ context.Context, msg *Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func newTestService(t *testing.T, sender Sender) *Service {
	t.Helper()
	svc, err := NewService(sender, Options{
		AdminEmail:   "office@sphinxlandscapes.com",
		CompanyName:  "Sphinx Landscapes",
		CompanyPhone: "(555) 123-4567",
	}, logger.Component(logger.Discard(), "email"))
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestContactEmails(t *testing.T) {
	sender := &captureSender{}
	svc := newTestService(t, sender)
	c := &model.Contact{Name: "Ann <script>", Email: "ann@x.com", Subject: "Hedges", Message: "Trim my hedges please"}

	require.NoError(t, svc.SendContactNotification(context.Background(), c))
	require.NoError(t, svc.SendContactConfirmation(context.Background(), c))
	require.Len(t, sender.sent, 2)

	admin := sender.sent[0]
	assert.Equal(t, "office@sphinxlandscapes.com", admin.To)
	assert.Equal(t, "New Contact Submission: Hedges", admin.Subject)
	assert.Contains(t, admin.HTML, "Trim my hedges please")
	assert.Contains(t, admin.HTML, "Not provided", "missing phone")
	assert.NotContains(t, admin.HTML, "<script>", "names are escaped")

	confirm := sender.sent[1]
	assert.Equal(t, "ann@x.com", confirm.To)
	assert.Equal(t, SubjectContactConfirmation, confirm.Subject)
	assert.Contains(t, confirm.HTML, "24-48 business hours")
	assert.Contains(t, confirm.HTML, "(555) 123-4567")
}

func TestQuoteEmails(t *testing.T) {
	sender := &captureSender{}
	svc := newTestService(t, sender)
	q := &model.Quote{
		Name:  "Carla",
		Email: "carla@example.com",
		Phone: "555-0100",
		ServicesRequested: []model.QuoteServiceRequest{
			{ServiceID: 1, Service: &model.ServiceSummary{ID: 1, Name: "Patio Design"}},
			{ServiceID: 9},
		},
	}

	require.NoError(t, svc.SendQuoteNotification(context.Background(), q))
	assert.Equal(t, "New Quote Request from Carla", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "Patio Design, service #9")

	require.NoError(t, svc.SendQuoteConfirmation(context.Background(), q))
	assert.Equal(t, SubjectQuoteConfirmation, sender.sent[1].Subject)
	assert.Equal(t, "carla@example.com", sender.sent[1].To)

	require.NoError(t, svc.SendQuoteStatusUpdate(context.Background(), q, model.QuoteStatusAccepted))
	status := sender.sent[2]
	assert.Equal(t, SubjectQuoteStatus, status.Subject)
	msg, _ := model.QuoteStatusMessage(model.QuoteStatusAccepted)
	assert.Contains(t, status.HTML, msg)

	assert.Error(t, svc.SendQuoteStatusUpdate(context.Background(), q, model.QuoteStatusNew))
	assert.Len(t, sender.sent, 3)
}

func TestSendErrorsAreWrapped(t *testing.T) {
	sender := &captureSender{err: errors.New("quota exceeded")}
	svc := newTestService(t, sender)

	err := svc.SendPendingDigest(context.Background(), 2, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "Jul 1, 2024")

	err = svc.SendContactConfirmation(context.Background(), &model.Contact{Name: "No Email"})
	assert.Error(t, err)
	assert.Len(t, sender.sent, 1, "empty recipients never reach the provider")
}

func TestResendSender(t *testing.T) {
	var got resendPayload
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.To == "bounce@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid recipient"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewResendSender("re_test", "Sphinx Landscapes <no-reply@example.com>")
	sender.endpoint = server.URL

	require.NoError(t, sender.Send(context.Background(), &Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"}))
	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "Sphinx Landscapes <no-reply@example.com>", got.From)
	assert.Equal(t, "<p>x</p>", got.Html)

	err := sender.Send(context.Background(), &Message{To: "bounce@example.com", Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestNewSenderSelectsProvider(t *testing.T) {
	log := logger.Component(logger.Discard(), "email")

	s, err := NewSender(context.Background(), config.EmailConfig{Provider: "log"}, log)
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())
	assert.NoError(t, s.Send(context.Background(), &Message{To: "x@example.com"}))

	s, err = NewSender(context.Background(), config.EmailConfig{Provider: "sendgrid", SendGridAPIKey: "SG.x", From: "a@b.c"}, log)
	require.NoError(t, err)
	assert.Equal(t, "sendgrid", s.Name())

	_, err = NewSender(context.Background(), config.EmailConfig{Provider: "pigeon"}, log)
	assert.Error(t, err)
}
