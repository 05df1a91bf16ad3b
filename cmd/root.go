package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ca-srg/readmelater/internal/config"
	"github.com/ca-srg/readmelater/internal/credentials"
	"github.com/ca-srg/readmelater/internal/poster"
	"github.com/ca-srg/readmelater/internal/ratelimit"
	"github.com/ca-srg/readmelater/internal/stats"
	"github.com/ca-srg/readmelater/internal/webhook"
)

const (
	appName      = "read_me_later"
	version      = "1.0"
	exampleCreds = `{"webhook": "https://hooks.slack.com/services/YourWebHookURL"}`
)

// ExitError carries a non-zero pipeline result out to main
type ExitError struct {
	Code poster.ExitCode
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type postOptions struct {
	message   string
	webhook   string
	credsFile string
}

func addPostFlags(flags *pflag.FlagSet, opts *postOptions) {
	flags.StringVarP(&opts.message, "message", "m", "", "the string you wish to post to slack")
	flags.StringVarP(&opts.webhook, "webhook", "w", "", `Pass Slack webhook in directly [OPTIONAL] Example: "https://hooks.slack.com/services/..."`)
	flags.StringVarP(&opts.credsFile, "creds-file", "f", "", "You can pass slack creds in as a JSON file [OPTIONAL] Example JSON: "+exampleCreds)
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(http.DefaultTransport)
}

func newRootCmd(transport http.RoundTripper) *cobra.Command {
	opts := &postOptions{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Post a message to a Slack channel",
		Long: fmt.Sprintf(`%s, version %s: a tool for posting messages to a slack channel.

The webhook is taken from --creds-file, then --webhook, then ~/.read_me_later.json,
then /app/.read_me_later.json. At most 10 messages are sent per minute.`, appName, version),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runPost(cmd, opts, transport)
		},
	}

	addPostFlags(root.Flags(), opts)
	_ = root.MarkFlagRequired("message")

	root.AddCommand(newStatsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runPost(cmd *cobra.Command, opts *postOptions, transport http.RoundTripper) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := log.New(cmd.OutOrStdout(), "", 0)

	limiter := ratelimit.NewFileLimiter(cfg.RateLimitFile, cfg.RateLimitMax, cfg.RateLimitWindow,
		ratelimit.WithLogger(logger))
	resolver := credentials.NewResolver(cfg.UserConfigPath, cfg.ContainerConfigPath, cfg.DefaultWebhook, logger)
	sender := webhook.NewSender(
		webhook.WithTimeout(cfg.SendTimeout),
		webhook.WithUserAgent(cfg.UserAgent),
		webhook.WithTransport(transport),
		webhook.WithLogger(logger),
	)

	code := poster.New(limiter, resolver, sender, logger).Process(cmd.Context(), poster.Request{
		Message:   opts.message,
		Webhook:   opts.webhook,
		CredsFile: opts.credsFile,
	})

	if cfg.StatsEnabled {
		recordOutcome(cfg.StatsPath, code.Outcome(), logger)
	}

	if code != poster.ExitOK {
		// The pipeline already explained the failure.
		cmd.SilenceErrors = true
		return &ExitError{Code: code}
	}
	return nil
}

// recordOutcome is best effort; a broken stats store never changes the exit code
func recordOutcome(path string, outcome poster.Outcome, logger *log.Logger) {
	store, err := stats.NewStore(path)
	if err != nil {
		logger.Printf("Warning: stats: failed to open store: %v", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Increment(outcome); err != nil {
		logger.Printf("Warning: stats: failed to record %s: %v", outcome, err)
	}
}
