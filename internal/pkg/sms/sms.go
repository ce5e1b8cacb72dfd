// Package sms sends text messages through an HTTP gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	// ErrGatewayURLRequired is returned when the gateway URL is missing.
	ErrGatewayURLRequired = errors.New("sms: gateway url is required")
	// ErrNoRecipient is returned when Message.To is empty.
	ErrNoRecipient = errors.New("sms: no recipient provided")
)

// Message is a text message.
type Message struct {
	// From overrides the sender configured on the gateway.
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// SMS abstracts an SMS provider.
type SMS interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPConfig configures HTTPGateway.
type HTTPConfig struct {
	URL    string
	APIKey string
	// From is the default sender.
	From    string
	Timeout time.Duration
	// MaxRetries bounds retries of 5xx and transport failures. Defaults to 3.
	MaxRetries uint64
	// Backoff is the first retry delay. Defaults to 200ms.
	Backoff    time.Duration
	HTTPClient *http.Client
}

// HTTPGateway posts messages as JSON to a gateway endpoint.
type HTTPGateway struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPGateway creates an HTTP SMS gateway client.
func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrGatewayURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPGateway{cfg: cfg, client: client}, nil
}

// Send delivers msg, retrying transient failures with exponential backoff.
func (g *HTTPGateway) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if msg.From == "" {
		msg.From = g.cfg.From
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	b := retry.WithMaxRetries(g.cfg.MaxRetries, retry.NewExponential(g.cfg.Backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if g.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err = fmt.Errorf("sms: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return retry.RetryableError(err)
		}
		return err
	})
}
