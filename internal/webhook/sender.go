// Package webhook posts plain-text messages to Slack incoming webhooks.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

// DefaultTimeout bounds a single webhook request
const DefaultTimeout = 10 * time.Second

// ErrMissingData is returned when the message or the webhook URL is empty
var ErrMissingData = errors.New("missing data")

// Sender posts messages to a webhook URL
type Sender struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	logger    *log.Logger
}

// Option configures a Sender
type Option func(*Sender)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) { s.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(s *Sender) { s.userAgent = ua }
}

// WithTransport replaces the underlying HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Sender) { s.transport = rt }
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Sender) { s.logger = logger }
}

// NewSender creates a Sender
func NewSender(opts ...Option) *Sender {
	s := &Sender{
		timeout:   DefaultTimeout,
		transport: http.DefaultTransport,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts {"text": message} to url and returns the response status code.
// Any status code counts as a completed request; an error means no response
// was received.
func (s *Sender) Send(ctx context.Context, message, url string) (int, error) {
	if message == "" || url == "" {
		s.logger.Printf("missing data")
		return 0, ErrMissingData
	}

	rec := &statusRecorder{base: s.transport, userAgent: s.userAgent}
	client := &http.Client{Timeout: s.timeout, Transport: rec}

	msg := &slack.WebhookMessage{Text: message}
	err := slack.PostWebhookCustomHTTPContext(ctx, url, client, msg)

	code, ok := rec.status()
	if !ok {
		if err == nil {
			err = errors.New("no response received")
		}
		s.logger.Printf("Unable to POST to slack, error: [%v]", err)
		return 0, fmt.Errorf("failed to post webhook: %w", err)
	}

	s.logger.Printf("Successful POST to slack. Status code: %d", code)
	if code < 200 || code > 299 {
		s.logger.Printf("Warning: slack responded with status %d: %v", code, err)
	}
	return code, nil
}

// statusRecorder sets the client header and remembers the status of the last response
type statusRecorder struct {
	base      http.RoundTripper
	userAgent string

	mu       sync.Mutex
	code     int
	received bool
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.code = resp.StatusCode
	r.received = true
	r.mu.Unlock()
	return resp, nil
}

func (r *statusRecorder) status() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code, r.received
}
