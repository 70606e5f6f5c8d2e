package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// go-playground/validator suggests using a single instance of the validator.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateModel runs the struct tags of a model through the validator and
// converts any failure into ValidationErrors.
func ValidateModel(m Model) error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	// Only the first failing rule per field is reported.
	out := make(ValidationErrors, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s cannot be empty.", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must have at most %s characters.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("The %s must be at most %s.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid (%s).", fe.Field(), fe.Tag())
	}
}

// ValidateEvent checks an event's fields. today is the calendar date at the
// moment of the create or update; the event date must fall strictly after it.
// It does not check that the venue exists.
func ValidateEvent(e Event, today Date) error {
	var errs ValidationErrors
	if err := ValidateModel(e); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}

	switch {
	case e.Date.IsZero():
		errs = append(errs, ValidationError{Field: "date", Message: "The date cannot be empty."})
	case !e.Date.After(today):
		errs = append(errs, ValidationError{Field: "date", Message: "The date has to be in the future."})
	}
	if e.Time != nil && !e.Time.Valid() {
		errs = append(errs, ValidationError{Field: "time", Message: "The time is not a valid time of day."})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateVenue checks a venue's fields.
func ValidateVenue(v Venue) error {
	return ValidateModel(v)
}
