package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/skincare-intake/internal/config"
	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/render"
	"github.com/jonathan/skincare-intake/internal/report"
	"github.com/jonathan/skincare-intake/internal/server/middleware"
	"github.com/jonathan/skincare-intake/internal/types"
	"github.com/jonathan/skincare-intake/internal/webhook"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// previewRunes bounds the reply excerpt written to the log.
const previewRunes = 80

// recommendation is the outcome of one forwarded submission.
type recommendation struct {
	submission *intake.Submission
	response   *webhook.Response
	document   report.Document
	markdown   string
	html       template.HTML
}

// recommend forwards a validated submission to the webhook and formats the reply.
func (s *Server) recommend(ctx context.Context, sub *intake.Submission) (*recommendation, error) {
	webhookURL := s.store.URL()
	if webhookURL == "" {
		return nil, webhook.ErrNotConfigured
	}

	summary := sub.Summary()
	log.Printf("[submit] Forwarding submission %s (request_id=%s): %d image(s), %d bytes, concerns=%d chars",
		summary.ID, middleware.GetRequestID(ctx), summary.ImageCount, summary.TotalBytes, summary.ConcernsLen)

	resp, err := s.webhook.Submit(ctx, webhookURL, sub)
	if err != nil {
		log.Printf("[webhook] Submission %s failed: %v", sub.ID, err)
		return nil, err
	}

	doc := report.Parse(resp.Body)
	markdown := doc.Markdown()
	html, err := render.HTML(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render recommendations: %w", err)
	}

	log.Printf("[webhook] Submission %s answered %d in %v (%d bytes, bypassed=%t): %q",
		sub.ID, resp.StatusCode, resp.Elapsed.Round(time.Millisecond), len(resp.Body), doc.Bypassed, replyPreview(markdown))

	return &recommendation{
		submission: sub,
		response:   resp,
		document:   doc,
		markdown:   markdown,
		html:       html,
	}, nil
}

// handleIndex serves the intake form.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderForm(w, http.StatusOK, formPage{})
}

// handleSubmit handles the browser form post and renders the results page.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := intake.FromRequest(w, r, s.limits)
	if err != nil {
		log.Printf("[submit] Rejected submission: %v", err)
		s.renderForm(w, HTTPStatus(err), formPage{
			Email:    r.FormValue("email"),
			Concerns: r.FormValue("concerns"),
			Error:    userMessage(err),
		})
		return
	}

	rec, err := s.recommend(r.Context(), sub)
	if err != nil {
		s.renderForm(w, HTTPStatus(err), formPage{
			Email:    sub.Email,
			Concerns: sub.Concerns,
			Error:    userMessage(err),
		})
		return
	}

	s.renderPage(w, http.StatusOK, "results.html", resultsPage{
		ID:         sub.ID.String(),
		Report:     rec.html,
		ImageCount: len(sub.Images),
		Elapsed:    rec.response.Elapsed.Round(time.Millisecond),
	})
}

// handleRecommendations is the JSON variant of handleSubmit.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	sub, err := intake.FromRequest(w, r, s.limits)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	rec, err := s.recommend(r.Context(), sub)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RecommendationResponse{
		ID:         sub.ID.String(),
		Raw:        rec.response.Body,
		Markdown:   rec.markdown,
		HTML:       string(rec.html),
		Bypassed:   rec.document.Bypassed,
		Blocks:     nonNilBlocks(rec.document.Blocks),
		ElapsedMS:  rec.response.Elapsed.Milliseconds(),
		ReceivedAt: time.Now().UTC(),
	})
}

// handleNormalize formats text without calling the webhook.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req types.NormalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, MsgInvalidRequestBody)
		return
	}

	doc := report.Parse(req.Text)
	markdown := doc.Markdown()
	html, err := render.HTML(markdown)
	if err != nil {
		log.Printf("[normalize] Render failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.NormalizeResponse{
		Markdown: markdown,
		HTML:     string(html),
		Bypassed: doc.Bypassed,
		Blocks:   nonNilBlocks(doc.Blocks),
	})
}

// handleGetWebhook returns the active webhook configuration.
func (s *Server) handleGetWebhook(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.webhookConfig(""))
}

// handleUpdateWebhook replaces the webhook URL.
func (s *Server) handleUpdateWebhook(w http.ResponseWriter, r *http.Request) {
	var req types.WebhookConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, MsgInvalidRequestBody)
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, userMessage(errors.Join(config.ErrInvalidWebhookURL, err)))
		return
	}
	if err := s.store.Set(req.WebhookURL); err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	log.Printf("[admin] Webhook URL updated (request_id=%s)", middleware.GetRequestID(r.Context()))
	s.jsonResponse(w, http.StatusOK, s.webhookConfig(MsgWebhookUpdated))
}

func (s *Server) webhookConfig(message string) types.WebhookConfigResponse {
	url := s.store.URL()
	return types.WebhookConfigResponse{
		WebhookURL: url,
		Configured: url != "",
		UpdatedAt:  s.store.UpdatedAt().UTC(),
		Message:    message,
	}
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// replyPreview is the start of the formatted reply as plain text.
func replyPreview(markdown string) string {
	text, err := render.PlainText(markdown)
	if err != nil {
		return ""
	}
	if runes := []rune(text); len(runes) > previewRunes {
		return string(runes[:previewRunes]) + "..."
	}
	return text
}

// nonNilBlocks keeps empty block lists as [] in JSON.
func nonNilBlocks(blocks []report.Block) []report.Block {
	if blocks == nil {
		return []report.Block{}
	}
	return blocks
}
