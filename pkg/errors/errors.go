package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates a missing entity
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrForbidden indicates the actor lacks the role or relationship for the action
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message == "" {
		return "access denied"
	}
	return e.Message
}

// ErrInvalidState indicates the operation is not permitted in the entity's current status
type ErrInvalidState struct {
	Entity string
	Status string
	Action string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("cannot %s %s in %s status", e.Action, e.Entity, e.Status)
}

// ErrInvalidTransition indicates a status change not in the transition table
type ErrInvalidTransition struct {
	Entity string
	From   string
	To     string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot change %s status from %s to %s", e.Entity, e.From, e.To)
}

// ErrValidation indicates malformed input
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrConflict indicates a lost conditional write (concurrent modification)
type ErrConflict struct {
	Resource string
	ID       string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Resource, e.ID)
}

// HTTPStatus maps an error kind to the HTTP status code handlers return for it.
func HTTPStatus(err error) int {
	var (
		notFound     *ErrNotFound
		forbidden    *ErrForbidden
		invalidState *ErrInvalidState
		invalidTrans *ErrInvalidTransition
		validation   *ErrValidation
		conflict     *ErrConflict
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &invalidState), errors.As(err, &invalidTrans):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
