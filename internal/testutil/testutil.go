// Package testutil provides common test utilities and helpers to reduce boilerplate in test files.
package testutil

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/monstrenyatko/docker-watchdog/internal/config"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
)

// NewTestLogger creates a logger that writes to t.Logf for testing.
// This ensures test output is properly captured by the test framework.
func NewTestLogger(t testing.TB) log.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	// Create a custom handler that writes to t.Logf
	handler := &testHandler{t: t, opts: opts}
	slogLogger := slog.New(handler)

	return log.NewSlogAdapter(slogLogger)
}

// ConfigOption allows customization of test config settings.
type ConfigOption func(*config.Settings)

// WithUnit sets the watched unit name.
func WithUnit(unit string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Unit = unit
	}
}

// WithAttempts sets the per-pass probe budget.
func WithAttempts(attempts int) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Attempts = attempts
	}
}

// WithAttemptDelay sets the pause between probe attempts.
func WithAttemptDelay(delay time.Duration) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.AttemptDelay = delay
	}
}

// WithInterval sets the pause between daemon passes.
func WithInterval(interval time.Duration) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Interval = interval
	}
}

// WithContainers sets the monitored container names.
func WithContainers(containers ...string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Containers = containers
	}
}

// WithComposeFile sets the compose project file.
func WithComposeFile(path string) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.ComposeFile = path
	}
}

// WithVerbose sets verbose logging.
func WithVerbose(verbose bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.Verbose = verbose
	}
}

// WithUserMode sets user mode.
func WithUserMode(userMode bool) ConfigOption {
	return func(cfg *config.Settings) {
		cfg.UserMode = userMode
	}
}

// NewMockConfig creates a config provider for testing with optional
// customizations. The attempt delay defaults to one millisecond so that
// probe loops in tests finish immediately.
func NewMockConfig(_ testing.TB, opts ...ConfigOption) config.Provider {
	cfg := &config.Settings{
		Unit:         config.DefaultUnit,
		Attempts:     config.DefaultAttempts,
		AttemptDelay: time.Millisecond,
		Interval:     config.DefaultInterval,
		Verbose:      true,
	}

	// Apply any custom options
	for _, opt := range opts {
		opt(cfg)
	}

	configProvider := config.NewDefaultConfigProvider()
	configProvider.SetConfig(cfg)
	return configProvider
}

// testHandler implements slog.Handler to write to testing.TB.
type testHandler struct {
	t    testing.TB
	opts *slog.HandlerOptions
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testHandler) Handle(_ context.Context, record slog.Record) error {
	h.t.Logf("[%s] %s", record.Level.String(), record.Message)
	return nil
}

func (h *testHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts}
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return &testHandler{t: h.t, opts: h.opts}
}
