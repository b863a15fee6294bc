// Package cmd provides output formatting utilities for docker-watchdog CLI.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidOutputFormats lists the formats accepted by --output.
var ValidOutputFormats = []string{"text", "json", "yaml"}

// ValidateOutputFormat rejects formats PrintOutput cannot render.
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "text", "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (valid formats: %s)", format, strings.Join(ValidOutputFormats, ", "))
	}
}

// PrintOutput formats and prints data according to the specified output format.
func PrintOutput(format string, data interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		return printJSON(data)
	case "yaml", "yml":
		return printYAML(data)
	case "text":
		return printText(data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// printJSON outputs data as JSON.
func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// printYAML outputs data as YAML.
func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() {
		_ = encoder.Close() // Ignore close error for stdout
	}()
	return encoder.Encode(data)
}

// printText outputs data in a human-readable text format. Commands render
// their own text views; this is the fallback.
func printText(data interface{}) error {
	fmt.Printf("%+v\n", data)
	return nil
}

// CheckResultStructured represents a health check result in structured format.
type CheckResultStructured struct {
	Name        string   `json:"name" yaml:"name"`
	Status      string   `json:"status" yaml:"status"`
	Message     string   `json:"message,omitempty" yaml:"message,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// HealthCheckOutput represents the output of the doctor command.
type HealthCheckOutput struct {
	Overall string                  `json:"overall" yaml:"overall"`
	Checks  []CheckResultStructured `json:"checks" yaml:"checks"`
	Summary map[string]int          `json:"summary" yaml:"summary"`
}
