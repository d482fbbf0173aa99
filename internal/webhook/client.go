// Package webhook forwards intake submissions to the externally configured
// recommendation webhook and returns its text reply.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/skincare-intake/internal/intake"
)

// DefaultTimeout bounds a single webhook call. Analysis can be slow.
const DefaultTimeout = 120 * time.Second

// DefaultUserAgent identifies the service to the webhook.
const DefaultUserAgent = "SkincareIntake/1.0"

// DefaultMaxResponseBytes caps how much of a reply is read.
const DefaultMaxResponseBytes = 1 << 20

// RequestIDHeader carries the submission ID.
const RequestIDHeader = "X-Request-ID"

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("webhook URL is not configured")

// Error represents a failed webhook call.
type Error struct {
	URL        string
	StatusCode int
	Body       string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook responded with status %d: %s", e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return fmt.Sprintf("webhook error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("webhook error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Response is a successful webhook reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
	Elapsed     time.Duration
}

// Options configures the client.
type Options struct {
	Timeout          time.Duration
	UserAgent        string
	MaxResponseBytes int64
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Client posts submissions to a webhook.
type Client struct {
	httpClient *http.Client
	options    *Options
}

// NewClient creates a client. A nil httpClient gets one with opts.Timeout.
func NewClient(httpClient *http.Client, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: httpClient, options: opts}
}

// ValidateURL checks that a webhook URL is absolute http(s).
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrNotConfigured
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	return nil
}

// Submit posts the submission as multipart form data. Any 2xx status is a
// success and the body is returned as text.
func (c *Client) Submit(ctx context.Context, webhookURL string, sub *intake.Submission) (*Response, error) {
	if err := ValidateURL(webhookURL); err != nil {
		return nil, err
	}

	body, contentType, err := EncodeForm(sub)
	if err != nil {
		return nil, &Error{URL: webhookURL, Message: "failed to encode form", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, body)
	if err != nil {
		return nil, &Error{URL: webhookURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.options.UserAgent)
	req.Header.Set(RequestIDHeader, sub.ID.String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: webhookURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.options.MaxResponseBytes))
	if err != nil {
		return nil, &Error{URL: webhookURL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			URL:        webhookURL,
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(data),
		Elapsed:     time.Since(start),
	}, nil
}

// EncodeForm builds the multipart body: email, concerns, then image_0..image_N.
func EncodeForm(sub *intake.Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("email", sub.Email); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("concerns", sub.Concerns); err != nil {
		return nil, "", err
	}

	for i, img := range sub.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image_%d"; filename="%s"`, i, escapeQuotes(img.Filename)))
		h.Set("Content-Type", img.ContentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
