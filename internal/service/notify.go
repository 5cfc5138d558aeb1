package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"sphinx_backend/internal/metrics"
	"sphinx_backend/internal/model"
)

// Notifier sends the transactional emails of the contact and quote workflows.
type Notifier interface {
	SendContactNotification(ctx context.Context, c *model.Contact) error
	SendContactConfirmation(ctx context.Context, c *model.Contact) error
	SendQuoteNotification(ctx context.Context, q *model.Quote) error
	SendQuoteConfirmation(ctx context.Context, q *model.Quote) error
	SendQuoteStatusUpdate(ctx context.Context, q *model.Quote, status string) error
}

const (
	NotifyContactAdmin   = "contact_admin"
	NotifyContactConfirm = "contact_confirmation"
	NotifyQuoteAdmin     = "quote_admin"
	NotifyQuoteConfirm   = "quote_confirmation"
	NotifyQuoteStatus    = "quote_status"
)

// Delivery is the outcome of one best-effort send. Err is logged, never returned to callers.
type Delivery struct {
	Kind string
	To   string
	Err  error
}

func (d Delivery) OK() bool { return d.Err == nil }

// deliver runs send once, logging and counting a failure without propagating it.
func deliver(ctx context.Context, log *logrus.Entry, kind, to string, send func(context.Context) error) Delivery {
	d := Delivery{Kind: kind, To: to}
	d.Err = send(ctx)
	metrics.RecordNotification(kind, d.Err)
	if d.Err != nil {
		log.WithFields(logrus.Fields{"kind": kind, "to": to, "error": d.Err}).Warn("notification failed")
	}
	return d
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) SendContactNotification(context.Context, *model.Contact) error { return nil }
func (NopNotifier) SendContactConfirmation(context.Context, *model.Contact) error { return nil }
func (NopNotifier) SendQuoteNotification(context.Context, *model.Quote) error     { return nil }
func (NopNotifier) SendQuoteConfirmation(context.Context, *model.Quote) error     { return nil }
func (NopNotifier) SendQuoteStatusUpdate(context.Context, *model.Quote, string) error {
	return nil
}
