// Command orq sends a prompt to OpenRouter and prints the answer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/orq/internal/cli"
	"github.com/HerbHall/orq/internal/config"
	"github.com/HerbHall/orq/internal/dispatch"
	"github.com/HerbHall/orq/internal/llm/openrouter"
	"github.com/HerbHall/orq/pkg/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		// The flag set has already reported the problem and usage.
		return 1
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "orq: failed to load configuration: %v\n", err)
		return 1
	}
	settings, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(stderr, "orq: %v\n", err)
		return 1
	}
	if opts.Verbose {
		settings.Logging.Level = "debug"
	}

	logger, err := config.NewLogger(settings.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "orq: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "orq: configuration error: %v\n", err)
		return 1
	}

	// The provider tags its own entries with the request id.
	requestID := uuid.NewString()
	reqLogger := logger.With(zap.String("request_id", requestID))
	if f := v.ConfigFileUsed(); f != "" {
		reqLogger.Debug("configuration loaded", zap.String("source", f))
	}

	provider, err := openrouter.New(providerConfig(settings, opts), settings.API.Key, logger.Named("openrouter"))
	if err != nil {
		fmt.Fprintf(stderr, "orq: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := dispatch.New(provider, stdout, reqLogger.Named("dispatch"))

	if opts.ListModels {
		if err := d.ListModels(ctx); err != nil {
			fmt.Fprintf(stderr, "orq: %s\n", describeError(err))
			return 1
		}
		return 0
	}

	prompt, err := cli.ReadPrompt(opts.Args, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "orq: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(stderr, "Run 'orq -h' for usage.")
		}
		return 1
	}

	model := opts.Model
	if model == "" {
		model = settings.Model.Default
	}

	res, err := d.Send(ctx, dispatch.Request{
		Model:         model,
		SystemPrompt:  opts.SystemPrompt,
		Prompt:        prompt,
		Stream:        opts.Stream,
		ProviderOrder: opts.ProviderOrder,
		RequestID:     requestID,
	})
	if err != nil {
		fmt.Fprintf(stderr, "orq: %s\n", describeError(err))
		return 1
	}

	fmt.Fprintln(stderr, res.Footer())
	return 0
}

// providerConfig layers the loaded settings and the -timeout flag over the
// provider defaults. Empty settings keep the default.
func providerConfig(settings *config.Settings, opts cli.Options) openrouter.Config {
	cfg := openrouter.DefaultConfig()
	if settings.API.URL != "" {
		cfg.URL = settings.API.URL
	}
	if settings.Model.Default != "" {
		cfg.Model = settings.Model.Default
	}
	if settings.API.Timeout > 0 {
		cfg.Timeout = settings.API.Timeout
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if settings.App.Referer != "" {
		cfg.Referer = settings.App.Referer
	}
	if settings.App.Title != "" {
		cfg.Title = settings.App.Title
	}
	return cfg
}

// describeError renders a failed request for the terminal. Upstream error
// objects and transport failures get distinct prefixes; anything else, such
// as a closed stdout, is printed as is.
func describeError(err error) string {
	var msg string
	switch {
	case llm.IsUpstreamError(err):
		return "upstream error: " + err.Error()
	case !llm.IsTransportError(err):
		return err.Error()
	case llm.IsAuthenticationError(err):
		msg = "authentication failed, check " + config.CredentialEnv + ": " + err.Error()
	case llm.IsRateLimitError(err):
		msg = "rate limited: " + err.Error()
	case llm.IsModelNotFoundError(err):
		msg = "unknown model: " + err.Error()
	case llm.IsContextLengthError(err):
		msg = "prompt too long for the model: " + err.Error()
	case llm.IsTimeoutError(err):
		msg = "no answer in time: " + err.Error()
	default:
		msg = err.Error()
	}
	msg = "transport error: " + msg
	if llm.IsRetryable(err) {
		msg += " (transient, try again later)"
	}
	return msg
}
