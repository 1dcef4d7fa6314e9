package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the record stores, the persistence backends and the QR generator.
var (
	ErrNotFound                 = errors.New("document not found")
	ErrConflict                 = errors.New("document update conflict")
	ErrBackendUnavailable       = errors.New("storage backend unavailable")
	ErrRenderSurfaceUnavailable = errors.New("no rendering surface available")
	ErrValidationRejected       = errors.New("validation rejected")
)

var (
	ErrCannotRemoveWhilePreparing = fmt.Errorf("%w: cannot remove items while preparing", ErrValidationRejected)
	ErrInvalidStatusTransition    = fmt.Errorf("%w: invalid status transition", ErrValidationRejected)
	ErrInvalidCredentials         = errors.New("invalid credentials")
)

// OperationError is what a record store returns on terminal failure.
type OperationError struct {
	Op   string
	Kind string
	ID   string
	Err  error
}

func (e *OperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Classify maps an arbitrary backend error onto the taxonomy. Errors that
// already belong to it are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrBackendUnavailable),
		errors.Is(err, ErrRenderSurfaceUnavailable),
		errors.Is(err, ErrValidationRejected):
		return err
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

// Rejected wraps a validation message as ErrValidationRejected.
func Rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationRejected, fmt.Sprintf(format, args...))
}
