// Package types provides request and response types for the intake HTTP API.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/skincare-intake/internal/report"
)

var validate = validator.New()

// NormalizeRequest asks the server to format a raw webhook reply.
type NormalizeRequest struct {
	Text string `json:"text"`
}

// NormalizeResponse carries the formatted report.
type NormalizeResponse struct {
	Markdown string         `json:"markdown"`
	HTML     string         `json:"html"`
	Bypassed bool           `json:"bypassed"`
	Blocks   []report.Block `json:"blocks"`
}

// RecommendationResponse is returned by the JSON submission endpoint.
type RecommendationResponse struct {
	ID         string         `json:"id"`
	Raw        string         `json:"raw"`
	Markdown   string         `json:"markdown"`
	HTML       string         `json:"html"`
	Bypassed   bool           `json:"bypassed"`
	Blocks     []report.Block `json:"blocks"`
	ElapsedMS  int64          `json:"elapsed_ms"`
	ReceivedAt time.Time      `json:"received_at"`
}

// WebhookConfigRequest updates the webhook URL.
type WebhookConfigRequest struct {
	WebhookURL string `json:"webhook_url" validate:"required,url"`
}

// Validate validates the WebhookConfigRequest using the validator.
func (r *WebhookConfigRequest) Validate() error {
	return validate.Struct(r)
}

// WebhookConfigResponse describes the active webhook configuration.
type WebhookConfigResponse struct {
	WebhookURL string    `json:"webhook_url"`
	Configured bool      `json:"configured"`
	UpdatedAt  time.Time `json:"updated_at"`
	Message    string    `json:"message,omitempty"`
}
