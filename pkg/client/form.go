package client

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9\-\+\(\) ]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ErrInvalidForm is returned when a step or form has field errors; see Errors().
var ErrInvalidForm = errors.New("please correct the highlighted fields")

const defaultSubmitError = "An error occurred while submitting the form. Please try again."

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (e FieldErrors) check(field string, failed bool, message string) {
	if failed {
		if _, seen := e[field]; !seen {
			e[field] = message
		}
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// submitMessage is what the form shows after a failed submission.
func submitMessage(err error) string {
	if err == nil || err.Error() == "" {
		return defaultSubmitError
	}
	return err.Error()
}
