// Package errs defines the error kinds surfaced by workspace operations.
// Callers match them with errors.Is against the sentinel values.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidPanelKind   = errors.New("invalid panel kind")
	ErrValidation         = errors.New("validation failed")
	ErrExternalDependency = errors.New("external dependency failure")
)

// NotFoundError reports a missing config, workspace or panel.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFound(entity, id string) NotFoundError {
	return NotFoundError{Entity: entity, ID: id}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidation(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidPanelKindError reports an operation applied to the wrong kind of panel,
// or a panel type that is not known at all (Want is empty then).
type InvalidPanelKindError struct {
	PanelID string
	Want    string
	Got     string
}

func (e InvalidPanelKindError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("invalid panel type %q", e.Got)
	}
	return fmt.Sprintf("panel %s is of type %s, expected %s", e.PanelID, e.Got, e.Want)
}

func (e InvalidPanelKindError) Is(target error) bool { return target == ErrInvalidPanelKind }

// ExternalError wraps a failed call to the diagram configuration service.
type ExternalError struct {
	Op     string
	Status int
	Err    error
}

func (e *ExternalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status != 0 {
		return fmt.Sprintf("diagram config %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("diagram config %s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExternalError) Is(target error) bool { return target == ErrExternalDependency }

// External wraps err as an ExternalError unless it already is one.
func External(op string, status int, err error) error {
	if err == nil {
		return nil
	}
	var extErr *ExternalError
	if errors.As(err, &extErr) {
		return err
	}
	return &ExternalError{Op: op, Status: status, Err: err}
}
