package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("validation failed")
)

// Kind names the entity an error refers to.
type Kind string

const (
	KindEvent Kind = "event"
	KindVenue Kind = "venue"
)

// NotFoundError reports a missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Kind Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s %d", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports a venue deletion refused because events still reference it.
type ConflictError struct {
	VenueID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("could not delete venue %d due to linked events", e.VenueID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError is a single field-level failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every field failure found for one entity.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

// UnknownVenue is the field error reported when an event points at a venue
// that does not exist.
func UnknownVenue(id int64) ValidationErrors {
	return ValidationErrors{{Field: "venue_id", Message: fmt.Sprintf("The venue %d does not exist.", id)}}
}

// Fields returns the names of the failing fields in report order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}
