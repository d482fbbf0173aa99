package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/skincare-intake/internal/config"
	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/webhook"
)

// Messages shown when a submission cannot be completed.
const (
	MsgConfigurationRequired = "Please configure the webhook URL in admin settings."
	MsgProcessingFailed      = "Failed to process your request. Please check your webhook configuration and try again."
	MsgWebhookUpdated        = "n8n webhook URL has been updated successfully."
	MsgInvalidRequestBody    = "Invalid request body"
	MsgInternalError         = "Something went wrong. Please try again."
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *intake.ValidationError
	var imageErr *intake.ImageError
	var webhookErr *webhook.Error

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr), errors.As(err, &imageErr):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrInvalidWebhookURL):
		return http.StatusBadRequest
	case errors.Is(err, webhook.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &webhookErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the text to show for an error. Webhook details stay in
// the log.
func userMessage(err error) string {
	if msg := intake.UserMessage(err); msg != "" {
		return msg
	}

	switch {
	case errors.Is(err, config.ErrInvalidWebhookURL):
		return config.MsgInvalidWebhookURL
	case errors.Is(err, webhook.ErrNotConfigured):
		return MsgConfigurationRequired
	case HTTPStatus(err) == http.StatusBadGateway:
		return MsgProcessingFailed
	default:
		return MsgInternalError
	}
}
