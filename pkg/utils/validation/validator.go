// Package validation wraps go-playground/validator with the field rules
// shared by the models and turns violations into per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"sphinx_backend/pkg/apperrors"
)

var (
	EmailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	PhonePattern = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)
	ZipPattern   = regexp.MustCompile(`(^\d{5}$)|(^\d{5}-\d{4}$)`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "email_address", func(fl validator.FieldLevel) bool {
			return EmailPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return PhonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "zip", func(fl validator.FieldLevel) bool {
			return ZipPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and reports every violation as a *apperrors.ValidationError.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperrors.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), Message(fe))
	}
	return out
}

// fieldPath drops the struct name from the namespace: Quote.address.zipCode -> address.zipCode.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Message renders a human-readable message for one violation.
func Message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email_address", "email":
		return "Please provide a valid email address"
	case "phone":
		return "Please provide a valid phone number"
	case "zip":
		return "Please provide a valid ZIP code"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be more than %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot be more than %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// Label turns a json field name into a sentence-case label: zipCode -> Zip code.
func Label(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
