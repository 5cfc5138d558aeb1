package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sphinx_backend/internal/model"
)

// Step is a page of the quote wizard.
type Step int

const (
	StepContact Step = iota + 1
	StepProperty
	StepProject
	StepAdditional
)

// Quote wizard field names.
const (
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldAddress            = "address"
	FieldCity               = "city"
	FieldState              = "state"
	FieldZipCode            = "zipCode"
	FieldPropertyType       = "propertyType"
	FieldPropertySize       = "propertySize"
	FieldServices           = "services"
	FieldProjectDescription = "projectDescription"
	FieldTimeframe          = "timeframe"
	FieldBudget             = "budget"
	FieldHowDidYouHear      = "howDidYouHear"
	FieldAdditionalComments = "additionalComments"
)

var ErrNotFinalStep = errors.New("the quote can only be submitted from the last step")

// QuoteSubmitter sends a finished quote request.
type QuoteSubmitter interface {
	SubmitQuote(ctx context.Context, req QuoteRequest) (*model.Quote, error)
}

// QuoteFields holds everything the wizard collects. Services keeps selection order.
type QuoteFields struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Address            string
	City               string
	State              string
	ZipCode            string
	PropertyType       string
	PropertySize       string
	Services           []uint
	ProjectDescription string
	Timeframe          string
	Budget             string
	HowDidYouHear      string
	AdditionalComments string
}

// QuoteWizard is the four-step quote form. Moving between steps never clears fields.
// It is not safe for concurrent use.
type QuoteWizard struct {
	submitter QuoteSubmitter
	onSuccess func(*model.Quote)

	fields      QuoteFields
	step        Step
	errors      FieldErrors
	submitting  bool
	submitted   bool
	submitError string
}

func NewQuoteWizard(submitter QuoteSubmitter, onSuccess func(*model.Quote)) *QuoteWizard {
	return &QuoteWizard{
		submitter: submitter,
		onSuccess: onSuccess,
		step:      StepContact,
		errors:    FieldErrors{},
	}
}

func (w *QuoteWizard) Step() Step          { return w.step }
func (w *QuoteWizard) Fields() QuoteFields { return w.fields }
func (w *QuoteWizard) Submitting() bool    { return w.submitting }
func (w *QuoteWizard) Submitted() bool     { return w.submitted }
func (w *QuoteWizard) SubmitError() string { return w.submitError }

// Errors returns a copy of the current field errors.
func (w *QuoteWizard) Errors() FieldErrors {
	out := make(FieldErrors, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Set changes a text field by its form name and clears that field's error.
func (w *QuoteWizard) Set(field, value string) error {
	f := &w.fields
	targets := map[string]*string{
		FieldFirstName:          &f.FirstName,
		FieldLastName:           &f.LastName,
		FieldEmail:              &f.Email,
		FieldPhone:              &f.Phone,
		FieldAddress:            &f.Address,
		FieldCity:               &f.City,
		FieldState:              &f.State,
		FieldZipCode:            &f.ZipCode,
		FieldPropertyType:       &f.PropertyType,
		FieldPropertySize:       &f.PropertySize,
		FieldProjectDescription: &f.ProjectDescription,
		FieldTimeframe:          &f.Timeframe,
		FieldBudget:             &f.Budget,
		FieldHowDidYouHear:      &f.HowDidYouHear,
		FieldAdditionalComments: &f.AdditionalComments,
	}
	target, ok := targets[field]
	if !ok {
		return fmt.Errorf("unknown quote field %q", field)
	}
	*target = value
	delete(w.errors, field)
	return nil
}

// ToggleService adds the service when it is not selected and removes it otherwise.
func (w *QuoteWizard) ToggleService(id uint) {
	delete(w.errors, FieldServices)
	for i, s := range w.fields.Services {
		if s == id {
			w.fields.Services = append(w.fields.Services[:i:i], w.fields.Services[i+1:]...)
			return
		}
	}
	w.fields.Services = append(w.fields.Services, id)
}

// Next validates the current step and advances when it passes.
func (w *QuoteWizard) Next() error {
	if !w.validate() {
		return ErrInvalidForm
	}
	if w.step < StepAdditional {
		w.step++
	}
	return nil
}

// Previous goes back one step without validating.
func (w *QuoteWizard) Previous() {
	if w.step > StepContact {
		w.step--
	}
}

// Submit validates the last step and sends the request. On success the wizard
// resets and the success callback fires; on failure it stays on the last step.
func (w *QuoteWizard) Submit(ctx context.Context) error {
	if w.step != StepAdditional {
		return ErrNotFinalStep
	}
	if !w.validate() {
		return ErrInvalidForm
	}

	w.submitting = true
	w.submitError = ""
	defer func() { w.submitting = false }()

	quote, err := w.submitter.SubmitQuote(ctx, w.request())
	if err != nil {
		w.submitError = submitMessage(err)
		return err
	}

	w.fields = QuoteFields{}
	w.errors = FieldErrors{}
	w.step = StepContact
	w.submitted = true
	if w.onSuccess != nil {
		w.onSuccess(quote)
	}
	return nil
}

func (w *QuoteWizard) validate() bool {
	w.errors = stepErrors(w.step, w.fields)
	return len(w.errors) == 0
}

func stepErrors(step Step, f QuoteFields) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case StepContact:
		errs.check(FieldFirstName, blank(f.FirstName), "First name is required")
		errs.check(FieldLastName, blank(f.LastName), "Last name is required")
		errs.check(FieldEmail, blank(f.Email), "Email is required")
		errs.check(FieldEmail, !validEmail(f.Email), "Please enter a valid email address")
		errs.check(FieldPhone, blank(f.Phone), "Phone number is required")
		errs.check(FieldPhone, !phonePattern.MatchString(f.Phone), "Please enter a valid phone number")
	case StepProperty:
		errs.check(FieldAddress, blank(f.Address), "Address is required")
		errs.check(FieldCity, blank(f.City), "City is required")
		errs.check(FieldState, blank(f.State), "State is required")
		errs.check(FieldZipCode, blank(f.ZipCode), "ZIP code is required")
		errs.check(FieldZipCode, !zipPattern.MatchString(strings.TrimSpace(f.ZipCode)), "Please enter a valid ZIP code")
		errs.check(FieldPropertyType, f.PropertyType == "", "Property type is required")
	case StepProject:
		errs.check(FieldServices, len(f.Services) == 0, "Please select at least one service")
		errs.check(FieldProjectDescription, blank(f.ProjectDescription), "Project description is required")
		errs.check(FieldProjectDescription, len(strings.TrimSpace(f.ProjectDescription)) < 10,
			"Please provide more details about your project")
		errs.check(FieldTimeframe, f.Timeframe == "", "Please select a timeframe")
	}
	return errs
}

// request maps the wizard fields onto the API payload.
func (w *QuoteWizard) request() QuoteRequest {
	f := w.fields
	description := strings.TrimSpace(f.ProjectDescription)
	if comments := strings.TrimSpace(f.AdditionalComments); comments != "" {
		description += "\n\nAdditional comments: " + comments
	}

	services := make([]model.ServiceRequestInput, 0, len(f.Services))
	for _, id := range f.Services {
		services = append(services, model.ServiceRequestInput{Service: id})
	}

	return QuoteRequest{
		Name:  strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName)),
		Email: strings.TrimSpace(f.Email),
		Phone: strings.TrimSpace(f.Phone),
		Address: model.Address{
			Street:  strings.TrimSpace(f.Address),
			City:    strings.TrimSpace(f.City),
			State:   strings.TrimSpace(f.State),
			ZipCode: strings.TrimSpace(f.ZipCode),
		},
		PropertyType:      f.PropertyType,
		PropertySize:      f.PropertySize,
		ServicesRequested: services,
		Budget:            f.Budget,
		Timeframe:         f.Timeframe,
		Description:       description,
		HearAboutUs:       strings.TrimSpace(f.HowDidYouHear),
	}
}
