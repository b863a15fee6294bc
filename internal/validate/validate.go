// Package validate provides functions to validate various aspects of the application.
package validate

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/monstrenyatko/docker-watchdog/internal/execx"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
)

// Validator provides system requirements validation with dependency injection.
type Validator struct {
	logger   log.Logger
	runner   execx.Runner
	osGetter func() string // For testing, defaults to runtime.GOOS
}

// NewValidator creates a new Validator with the provided logger and command runner.
func NewValidator(logger log.Logger, runner execx.Runner) *Validator {
	return &Validator{
		logger:   logger,
		runner:   runner,
		osGetter: func() string { return runtime.GOOS },
	}
}

// WithOSGetter sets a custom OS getter for testing.
func (v *Validator) WithOSGetter(osGetter func() string) *Validator {
	v.osGetter = osGetter
	return v
}

// NewValidatorWithDefaults creates a new Validator with default dependencies.
func NewValidatorWithDefaults(logger log.Logger) *Validator {
	return &Validator{
		logger:   logger,
		runner:   execx.NewRealRunner(),
		osGetter: func() string { return runtime.GOOS },
	}
}

// SystemRequirements checks that the host can run the watchdog at all.
func (v *Validator) SystemRequirements() error {
	ctx := context.Background()
	goos := v.osGetter()

	if goos != "linux" {
		return fmt.Errorf("unsupported platform: %s (docker-watchdog requires Linux with systemd)", goos)
	}

	return v.validateLinux(ctx)
}

// validateLinux checks Linux-specific requirements (systemd).
func (v *Validator) validateLinux(ctx context.Context) error {
	v.logger.Debug("Validating systemd availability")

	systemdVersion, err := v.runner.CombinedOutput(ctx, "systemctl", "--version")
	if err != nil {
		return fmt.Errorf("systemd not found: %w", err)
	}

	if !strings.Contains(string(systemdVersion), "systemd") {
		return fmt.Errorf("systemd not properly installed")
	}

	return nil
}
