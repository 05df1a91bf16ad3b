// Package poster sequences validation, rate limiting, credential resolution
// and delivery for a single message, and reports the result as an exit code.
package poster

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/ca-srg/readmelater/internal/ratelimit"
	"github.com/ca-srg/readmelater/internal/validate"
)

// Limiter gates send attempts
type Limiter interface {
	Allow(ctx context.Context) error
}

// Resolver finds the webhook URL for an invocation
type Resolver interface {
	Resolve(webhook, credsFile string) (string, error)
}

// Sender delivers a message and returns the response status code
type Sender interface {
	Send(ctx context.Context, message, url string) (int, error)
}

// Request holds the parsed command-line arguments
type Request struct {
	Message   string
	Webhook   string
	CredsFile string
}

// Poster runs the posting pipeline
type Poster struct {
	limiter  Limiter
	resolver Resolver
	sender   Sender
	logger   *log.Logger
}

// New creates a Poster. A nil logger discards diagnostics.
func New(limiter Limiter, resolver Resolver, sender Sender, logger *log.Logger) *Poster {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Poster{
		limiter:  limiter,
		resolver: resolver,
		sender:   sender,
		logger:   logger,
	}
}

// Process posts req.Message and returns the exit code for the invocation.
// Checks run in a fixed order: message length, rate limit, credentials,
// webhook shape, delivery.
func (p *Poster) Process(ctx context.Context, req Request) ExitCode {
	if !validate.MessageLength(req.Message) {
		p.logger.Printf("Error: message must be between 1 and %d characters", validate.MaxMessageLength)
		return ExitInvalidMessage
	}

	if err := p.limiter.Allow(ctx); err != nil {
		var rlErr *ratelimit.RateLimitedError
		if errors.As(err, &rlErr) {
			p.logger.Printf("Rate limit exceeded. Please wait %d seconds before sending another message.", rlErr.RetryAfterSeconds())
		} else {
			p.logger.Printf("Rate limit exceeded: %v", err)
		}
		return ExitRateLimited
	}

	creds, err := p.resolver.Resolve(req.Webhook, req.CredsFile)
	if err != nil || creds == "" {
		p.logger.Printf("unable to find slack credentials, post will fail")
		p.logger.Printf("Please provide webhook via --webhook, --creds-file, or create ~/.read_me_later.json")
		return ExitNoCredentials
	}

	if !validate.WebhookURL(creds) {
		p.logger.Printf("Error: invalid webhook URL, expected https://hooks.slack.com/services/...")
		return ExitInvalidWebhook
	}

	// Any response counts as delivered, whatever its status code.
	if _, err := p.sender.Send(ctx, req.Message, creds); err != nil {
		return ExitSendFailed
	}
	return ExitOK
}
