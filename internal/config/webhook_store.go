package config

import (
	"errors"
	"sync"
	"time"

	"github.com/jonathan/skincare-intake/internal/webhook"
)

// MsgInvalidWebhookURL is shown when the admin enters an unusable URL.
const MsgInvalidWebhookURL = "Please enter a valid webhook URL."

// ErrInvalidWebhookURL is returned by WebhookStore.Set for unusable URLs.
var ErrInvalidWebhookURL = errors.New(MsgInvalidWebhookURL)

// WebhookStore holds the webhook URL that can be changed while the server runs.
type WebhookStore struct {
	mu        sync.RWMutex
	url       string
	updatedAt time.Time
}

// NewWebhookStore creates a store seeded with the configured URL (may be empty).
func NewWebhookStore(initial string) *WebhookStore {
	return &WebhookStore{url: initial, updatedAt: time.Now()}
}

// URL returns the current webhook URL.
func (s *WebhookStore) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// UpdatedAt returns when the URL was last set.
func (s *WebhookStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Set replaces the webhook URL after checking it is absolute http(s).
func (s *WebhookStore) Set(rawURL string) error {
	if err := webhook.ValidateURL(rawURL); err != nil {
		return errors.Join(ErrInvalidWebhookURL, err)
	}

	s.mu.Lock()
	s.url = rawURL
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return nil
}
