// Package email renders the transactional emails of the contact and quote workflows
// and hands them to the configured provider.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	"sphinx_backend/internal/model"
)

const (
	SubjectContactConfirmation = "We received your message - Sphinx Landscapes"
	SubjectQuoteConfirmation   = "Quote Request Received - Sphinx Landscapes"
	SubjectQuoteStatus         = "Quote Request Update - Sphinx Landscapes"
	SubjectPendingDigest       = "Pending Inquiries Digest"
)

// Message is one rendered email ready for a provider.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// Options configure the Service.
type Options struct {
	AdminEmail   string
	CompanyName  string
	CompanyPhone string
}

// Service renders templates and delivers them through a Sender.
type Service struct {
	sender    Sender
	opts      Options
	templates *template.Template
	log       *logrus.Entry
	now       func() time.Time
}

type baseData struct {
	Company string
	Phone   string
}

type ContactData struct {
	baseData
	Contact *model.Contact
}

type QuoteData struct {
	baseData
	Quote    *model.Quote
	Services []string
}

type QuoteStatusData struct {
	baseData
	Quote   *model.Quote
	Message string
}

type PendingDigestData struct {
	baseData
	Contacts int64
	Quotes   int64
	Date     time.Time
}

func NewService(sender Sender, opts Options, log *logrus.Entry) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}
	if opts.CompanyName == "" {
		opts.CompanyName = "Sphinx Landscapes"
	}
	return &Service{
		sender:    sender,
		opts:      opts,
		templates: templates,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *Service) base() baseData {
	return baseData{Company: s.opts.CompanyName, Phone: s.opts.CompanyPhone}
}

func (s *Service) sendTemplateEmail(ctx context.Context, to, subject, templateName string, data interface{}) error {
	if to == "" {
		return fmt.Errorf("%s: recipient is empty", templateName)
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	msg := &Message{To: to, Subject: subject, HTML: body.String()}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s send to %s: %w", s.sender.Name(), to, err)
	}
	s.log.WithFields(logrus.Fields{"provider": s.sender.Name(), "to": to, "template": templateName}).Debug("email sent")
	return nil
}

func (s *Service) SendContactNotification(ctx context.Context, c *model.Contact) error {
	return s.sendTemplateEmail(ctx, s.opts.AdminEmail,
		"New Contact Submission: "+c.Subject, "contact_notification.html",
		ContactData{baseData: s.base(), Contact: c})
}

func (s *Service) SendContactConfirmation(ctx context.Context, c *model.Contact) error {
	return s.sendTemplateEmail(ctx, c.Email, SubjectContactConfirmation, "contact_confirmation.html",
		ContactData{baseData: s.base(), Contact: c})
}

func (s *Service) SendQuoteNotification(ctx context.Context, q *model.Quote) error {
	return s.sendTemplateEmail(ctx, s.opts.AdminEmail,
		"New Quote Request from "+q.Name, "quote_notification.html",
		QuoteData{baseData: s.base(), Quote: q, Services: serviceNames(q)})
}

func (s *Service) SendQuoteConfirmation(ctx context.Context, q *model.Quote) error {
	return s.sendTemplateEmail(ctx, q.Email, SubjectQuoteConfirmation, "quote_confirmation.html",
		QuoteData{baseData: s.base(), Quote: q})
}

// SendQuoteStatusUpdate sends the canned message for status. Statuses without a
// message are rejected.
func (s *Service) SendQuoteStatusUpdate(ctx context.Context, q *model.Quote, status string) error {
	msg, ok := model.QuoteStatusMessage(status)
	if !ok {
		return fmt.Errorf("no status message for %q", status)
	}
	return s.sendTemplateEmail(ctx, q.Email, SubjectQuoteStatus, "quote_status.html",
		QuoteStatusData{baseData: s.base(), Quote: q, Message: msg})
}

// SendPendingDigest tells the operator how many inquiries still have status "new".
func (s *Service) SendPendingDigest(ctx context.Context, contacts, quotes int64) error {
	return s.sendTemplateEmail(ctx, s.opts.AdminEmail, SubjectPendingDigest, "pending_digest.html",
		PendingDigestData{baseData: s.base(), Contacts: contacts, Quotes: quotes, Date: s.now()})
}

// serviceNames lists the requested services by name, falling back to the id when
// the service is gone.
func serviceNames(q *model.Quote) []string {
	names := make([]string, 0, len(q.ServicesRequested))
	for _, r := range q.ServicesRequested {
		if r.Service != nil && r.Service.Name != "" {
			names = append(names, r.Service.Name)
			continue
		}
		names = append(names, fmt.Sprintf("service #%d", r.ServiceID))
	}
	return names
}
