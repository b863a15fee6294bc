package validate

import (
	"fmt"
	"regexp"
)

// Systemd unit names must match this pattern: alphanumeric, dots, dashes,
// underscores, @, and colons. This prevents injection of shell
// metacharacters like ;, |, &, $, etc.
var validUnitName = regexp.MustCompile(`^[a-zA-Z0-9._@:-]+$`)

// ValidateUnitName validates that a unit name is safe for use in shell commands.
// Unit names must follow systemd naming conventions to prevent command injection.
func ValidateUnitName(unitName string) error {
	if unitName == "" {
		return fmt.Errorf("unit name cannot be empty")
	}

	if !validUnitName.MatchString(unitName) {
		return fmt.Errorf("invalid unit name: contains unsafe characters")
	}

	// Additional length check to prevent extremely long names
	if len(unitName) > 256 {
		return fmt.Errorf("unit name too long")
	}

	return nil
}

// Docker container names allow alphanumerics, underscores, dots and dashes,
// optionally prefixed with a slash as the engine API reports them.
var validContainerName = regexp.MustCompile(`^/?[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateContainerName checks a monitored container name.
func ValidateContainerName(name string) error {
	if name == "" {
		return fmt.Errorf("container name cannot be empty")
	}

	if !validContainerName.MatchString(name) {
		return fmt.Errorf("invalid container name: %q", name)
	}

	if len(name) > 256 {
		return fmt.Errorf("container name too long")
	}

	return nil
}
