package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

var (
	// ErrNoCredentials is returned when no source yields a webhook
	ErrNoCredentials = errors.New("unable to find slack credentials")
	// ErrNoWebhook is returned when a credentials file lacks a usable "webhook" value
	ErrNoWebhook = errors.New("no slack webhook provided")
)

// File is the JSON layout of a credentials file. Other keys are ignored.
type File struct {
	Webhook any `json:"webhook"`
}

// LoadWebhookFile reads a JSON credentials file and returns its "webhook" value.
func LoadWebhookFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s not found: %w", path, err)
		}
		return "", fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("unable to parse json credentials file %s: %w", path, err)
	}

	webhook, ok := f.Webhook.(string)
	if !ok || webhook == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoWebhook)
	}
	return webhook, nil
}

// Resolver picks the webhook for an invocation from prioritized sources
type Resolver struct {
	userConfigPath      string
	containerConfigPath string
	defaultWebhook      string
	logger              *log.Logger
}

// NewResolver creates a Resolver. Empty paths are skipped during discovery.
func NewResolver(userConfigPath, containerConfigPath, defaultWebhook string, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		userConfigPath:      userConfigPath,
		containerConfigPath: containerConfigPath,
		defaultWebhook:      defaultWebhook,
		logger:              logger,
	}
}

// Resolve returns the webhook to post to. A credentials file takes priority over
// an explicit webhook; neither present falls back to the user config, the
// container config and finally the compiled-in default.
func (r *Resolver) Resolve(webhook, credsFile string) (string, error) {
	if credsFile != "" {
		w, err := LoadWebhookFile(credsFile)
		if err != nil {
			r.logger.Printf("%v", err)
			return "", fmt.Errorf("%w: %v", ErrNoCredentials, err)
		}
		return w, nil
	}

	if webhook != "" {
		return webhook, nil
	}

	for _, path := range []string{r.userConfigPath, r.containerConfigPath} {
		if w, ok := r.tryDefault(path); ok {
			return w, nil
		}
	}

	if r.defaultWebhook != "" {
		return r.defaultWebhook, nil
	}
	return "", ErrNoCredentials
}

func (r *Resolver) tryDefault(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	r.logger.Printf("Loading webhook from %s", path)
	w, err := LoadWebhookFile(path)
	if err != nil {
		r.logger.Printf("%v", err)
		return "", false
	}
	return w, true
}
