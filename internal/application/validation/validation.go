// Package validation turns form input checks into a list of messages that
// handlers render next to the form.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Errors collects every problem found with a submitted form.
type Errors struct {
	Messages []string
}

// Error joins the messages.
func (e *Errors) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Add appends a message.
func (e *Errors) Add(format string, args ...any) {
	e.Messages = append(e.Messages, fmt.Sprintf(format, args...))
}

// Check appends err's message when err is non-nil. Nested *Errors are flattened.
func (e *Errors) Check(err error) {
	if err == nil {
		return
	}
	var nested *Errors
	if errors.As(err, &nested) {
		e.Messages = append(e.Messages, nested.Messages...)
		return
	}
	e.Messages = append(e.Messages, err.Error())
}

// Err returns e when it holds messages and nil otherwise.
func (e *Errors) Err() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}

// Messages returns the messages carried by err, or nil when err is not a
// validation error.
func Messages(err error) []string {
	var v *Errors
	if errors.As(err, &v) {
		return v.Messages
	}
	return nil
}

// Wrap converts a single domain error into a validation error so handlers
// render it with the form instead of as a server error.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if Messages(err) != nil {
		return err
	}
	return &Errors{Messages: []string{err.Error()}}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
	})
	return validate
}

// Struct runs the `validate` tags on v and returns every failure as a
// message using the field's `label` tag.
// PRE: v is a struct or pointer to struct
// POST: Returns nil or *Errors
func Struct(v any) error {
	errs := &Errors{}
	CheckStruct(errs, v)
	return errs.Err()
}

// CheckStruct is Struct appending into an existing collection.
func CheckStruct(errs *Errors, v any) {
	err := instance().Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Check(err)
		return
	}
	for _, fe := range fieldErrs {
		errs.Messages = append(errs.Messages, message(fe))
	}
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "numeric", "number":
		return label + " must be a number"
	case "datetime":
		return fmt.Sprintf("%s must be a date in the form %s", label, fe.Param())
	case "eqfield":
		return label + " does not match"
	case "uuid", "uuid4":
		return label + " is not a valid identifier"
	}
	return label + " is invalid"
}
