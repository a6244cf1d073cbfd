// Package cli turns orq's command line into an immutable Options value.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DefaultSystemPrompt is sent unless -r or -system is given.
const DefaultSystemPrompt = "Answer directly and tersely. No preamble, no commentary, no follow-up questions."

// ErrUsage reports that no prompt was supplied.
var ErrUsage = errors.New("no prompt given: pass it as an argument or pipe it on stdin")

// Shortcut maps a single-letter flag to an upstream model id.
type Shortcut struct {
	Flag  string
	Model string
}

// Shortcuts lists the built-in model shortcuts in usage order.
var Shortcuts = []Shortcut{
	{Flag: "c", Model: "anthropic/claude-sonnet-4"},
	{Flag: "d", Model: "deepseek/deepseek-chat-v3.1"},
	{Flag: "g", Model: "google/gemini-2.5-flash"},
	{Flag: "k", Model: "moonshotai/kimi-k2"},
	{Flag: "o", Model: "openai/gpt-4o-mini"},
}

// Options is the parsed command line. Build it with Parse; it is not
// modified afterwards.
type Options struct {
	// Model is the explicit model choice, or "" to use the configured default.
	Model string
	// SystemPrompt is the resolved system message; "" means none is sent.
	SystemPrompt  string
	Stream        bool
	ProviderOrder []string
	// Timeout overrides api.timeout when positive.
	Timeout    time.Duration
	ConfigPath string
	Verbose    bool
	ListModels bool
	// Args holds the positional arguments that make up the prompt.
	Args []string
}

// Parse parses args (without the program name). Usage and flag errors are
// written to output. A -h or -help request returns flag.ErrHelp.
func Parse(args []string, output io.Writer) (Options, error) {
	fs := flag.NewFlagSet("orq", flag.ContinueOnError)
	fs.SetOutput(output)

	// Shortcuts are applied in command-line order, so the last one wins.
	var shortcut string
	for _, s := range Shortcuts {
		model := s.Model
		fs.BoolFunc(s.Flag, "use "+model, func(v string) error {
			on, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			if on {
				shortcut = model
			}
			return nil
		})
	}

	custom := fs.String("m", "", "use `MODEL` (overrides any shortcut)")
	raw := fs.Bool("r", false, "send no system prompt")
	system := fs.String("system", "", "custom system prompt `TEXT` (overrides -r)")
	stream := fs.Bool("stream", false, "print the answer as it is generated")
	providers := fs.String("provider", "", "comma-separated provider `LIST` in order of preference")
	timeout := fs.Duration("timeout", 0, "overall request timeout (default from config, 5m)")
	configPath := fs.String("config", "", "path to configuration `file`")
	verbose := fs.Bool("v", false, "log request details to stderr")
	listModels := fs.Bool("models", false, "list available model ids and exit")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: orq [flags] [prompt...]")
		fmt.Fprintln(fs.Output(), "\nSends a prompt to OpenRouter and prints the answer. Without a prompt")
		fmt.Fprintln(fs.Output(), "argument the prompt is read from stdin. Requires OPENROUTER_API_KEY.")
		fmt.Fprintln(fs.Output(), "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if *timeout < 0 {
		err := fmt.Errorf("-timeout must not be negative, got %s", *timeout)
		fmt.Fprintln(fs.Output(), err)
		return Options{}, err
	}

	opts := Options{
		Model:         shortcut,
		SystemPrompt:  resolveSystemPrompt(*system, *raw),
		Stream:        *stream,
		ProviderOrder: SplitProviders(*providers),
		Timeout:       *timeout,
		ConfigPath:    *configPath,
		Verbose:       *verbose,
		ListModels:    *listModels,
		Args:          fs.Args(),
	}
	if *custom != "" {
		opts.Model = *custom
	}
	return opts, nil
}

// resolveSystemPrompt applies custom > raw > default.
func resolveSystemPrompt(custom string, raw bool) string {
	switch {
	case custom != "":
		return custom
	case raw:
		return ""
	default:
		return DefaultSystemPrompt
	}
}

// SplitProviders splits a comma-separated list, trimming whitespace and
// dropping empty entries. It returns nil when nothing remains.
func SplitProviders(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ReadPrompt returns the positional arguments joined by spaces, or, when
// there are none, everything on stdin with surrounding whitespace removed.
func ReadPrompt(args []string, stdin io.Reader) (string, error) {
	if prompt := strings.Join(args, " "); strings.TrimSpace(prompt) != "" {
		return prompt, nil
	}
	if stdin == nil {
		return "", ErrUsage
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", ErrUsage
	}
	return prompt, nil
}
