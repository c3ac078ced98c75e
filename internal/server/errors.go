package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/placement-cell/internal/schemas"
	"github.com/jonathan/placement-cell/internal/transition"
	"github.com/jonathan/placement-cell/internal/types"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "Invalid credentials"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrForbidden indicates an authenticated caller acting outside their role.
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message == "" {
		return "Access denied"
	}
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *types.ErrNotFound
		conflict     *types.ErrConflict
		invalidState *types.ErrInvalidState
		atomicity    *types.ErrAtomicity
		validation   *ErrValidation
		schemaErr    *schemas.ValidationError
		credentials  *ErrInvalidCredentials
		forbidden    *ErrForbidden
	)

	switch {
	case errors.As(err, &atomicity):
		return http.StatusInternalServerError
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalidState):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validation), errors.As(err, &schemaErr),
		errors.Is(err, transition.ErrMissingActor), errors.Is(err, transition.ErrMissingParty):
		return http.StatusBadRequest
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message. Unmapped errors are not echoed.
func errorMessage(err error) string {
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		return "validation error: " + schemaErr.First()
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		var atomicity *types.ErrAtomicity
		if errors.As(err, &atomicity) {
			return fmt.Sprintf("%s failed and was rolled back", atomicity.Op)
		}
		return "Server error"
	}
	return err.Error()
}
