package client

import (
	"context"
	"fmt"
	"strings"

	"sphinx_backend/internal/model"
)

// ContactSubmitter sends a contact form.
type ContactSubmitter interface {
	SubmitContact(ctx context.Context, req ContactRequest) (*model.Contact, error)
}

// Contact form field names.
const (
	FieldName    = "name"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ContactForm holds the contact page state. It is not safe for concurrent use.
type ContactForm struct {
	submitter ContactSubmitter

	Name    string
	Email   string
	Phone   string
	Subject string
	Message string

	errors     FieldErrors
	submitting bool
	submitted  bool
	err        string
}

func NewContactForm(submitter ContactSubmitter) *ContactForm {
	return &ContactForm{submitter: submitter, errors: FieldErrors{}}
}

func (f *ContactForm) Submitting() bool { return f.submitting }
func (f *ContactForm) Submitted() bool  { return f.submitted }

// Err is the message of the last failed submission.
func (f *ContactForm) Err() string { return f.err }

func (f *ContactForm) Errors() FieldErrors {
	out := make(FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Set changes a field by its form name and clears that field's error.
func (f *ContactForm) Set(field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	default:
		return fmt.Errorf("unknown contact field %q", field)
	}
	delete(f.errors, field)
	return nil
}

// Validate records field errors and reports whether the form can be sent.
func (f *ContactForm) Validate() bool {
	errs := FieldErrors{}
	errs.check(FieldName, blank(f.Name), "Name is required")
	errs.check(FieldEmail, blank(f.Email), "Email is required")
	errs.check(FieldEmail, !validEmail(f.Email), "Please enter a valid email address")
	errs.check(FieldSubject, blank(f.Subject), "Subject is required")
	errs.check(FieldMessage, blank(f.Message), "Message is required")
	errs.check(FieldMessage, len(strings.TrimSpace(f.Message)) < 10, "Message is too short (minimum 10 characters)")
	errs.check(FieldPhone, f.Phone != "" && !phonePattern.MatchString(f.Phone), "Please enter a valid phone number")
	f.errors = errs
	return len(errs) == 0
}

// Submit validates and sends the form. Fields are cleared only on success.
func (f *ContactForm) Submit(ctx context.Context) error {
	if !f.Validate() {
		return ErrInvalidForm
	}

	f.submitting = true
	f.err = ""
	defer func() { f.submitting = false }()

	_, err := f.submitter.SubmitContact(ctx, ContactRequest{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	})
	if err != nil {
		f.err = submitMessage(err)
		return err
	}

	f.submitted = true
	f.Reset()
	return nil
}

// Reset clears the fields and their errors.
func (f *ContactForm) Reset() {
	f.Name, f.Email, f.Phone, f.Subject, f.Message = "", "", "", "", ""
	f.errors = FieldErrors{}
}

// ResetSubmission hides the success or failure message.
func (f *ContactForm) ResetSubmission() {
	f.submitted = false
	f.err = ""
}
