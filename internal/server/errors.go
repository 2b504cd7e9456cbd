// Package server provides the HTTP API for the Architect dashboard.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/architect/internal/gateway"
	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/panels"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/storefront"
	"github.com/jonathan/architect/internal/wizard"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *panels.InputError
		configErr     *integrations.ConfigError
		webhookErr    *integrations.WebhookError
		generationErr *gateway.GenerationError
		storefrontErr *storefront.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &inputErr), errors.As(err, &configErr),
		errors.Is(err, project.ErrEmptyGoal), errors.Is(err, integrations.ErrSensitiveData):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrNotFound), errors.Is(err, notify.ErrNotFound), errors.Is(err, wizard.ErrUnknownWizard):
		return http.StatusNotFound
	case errors.Is(err, project.ErrGenerationInProgress), errors.Is(err, project.ErrUndoUsed),
		errors.Is(err, notify.ErrAlreadyUndone), errors.Is(err, notify.ErrNotUndoable), errors.Is(err, panels.ErrNoWebhook):
		return http.StatusConflict
	case errors.Is(err, project.ErrUndoExpired):
		return http.StatusGone
	case errors.Is(err, project.ErrOffline):
		return http.StatusServiceUnavailable
	case errors.As(err, &generationErr), errors.As(err, &webhookErr), errors.As(err, &storefrontErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable error name sent alongside the message.
func errorCode(err error) string {
	var generationErr *gateway.GenerationError
	if errors.As(err, &generationErr) {
		return "generation_failed"
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusGone:
		return "expired"
	case http.StatusServiceUnavailable:
		return "offline"
	case http.StatusBadGateway:
		return "upstream_failed"
	default:
		return "internal"
	}
}
