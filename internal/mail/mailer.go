// Package mail sends transactional email through an HTTP provider.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, to string, subject string, html string) error
}

// HTTPMailer posts to a Resend-style JSON API.
type HTTPMailer struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

func NewHTTPMailer(baseURL string, apiKey string, from string) *HTTPMailer {
	return &HTTPMailer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *HTTPMailer) Send(ctx context.Context, to string, subject string, html string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    m.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// LogMailer stands in when no API key is configured; the reset link shows up
// in the server log instead of an inbox.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to string, subject string, _ string) error {
	slog.Info("email suppressed (no EMAIL_API_KEY)", "to", to, "subject", subject)
	return nil
}
