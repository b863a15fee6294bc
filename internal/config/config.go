// Package config provides configuration management for docker-watchdog
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Provider defines the interface for configuration providers.
type Provider interface {
	// GetConfig returns the current application configuration.
	GetConfig() *Settings
	// SetConfig sets the application configuration.
	SetConfig(c *Settings)
	// InitConfig initializes the application configuration.
	InitConfig() *Settings
	// SetConfigFilePath sets the configuration file path.
	SetConfigFilePath(p string)
}

// defaultConfigProvider implements the Provider interface.
type defaultConfigProvider struct {
	cfg *Settings
}

// NewDefaultConfigProvider creates a new default config provider.
func NewDefaultConfigProvider() Provider {
	return &defaultConfigProvider{}
}

var defaultProvider = NewDefaultConfigProvider()
var cfg *Settings

// Default configuration values for the watchdog. The unit name is the only
// setting that carries meaning for the check itself; the attempt budget
// bounds the engine probes inside a single pass.
const (
	DefaultUnit         = "docker.service"
	DefaultAttempts     = 3
	DefaultAttemptDelay = 30 * time.Second
	DefaultInterval     = 5 * time.Minute
	DefaultUserMode     = false
	DefaultVerbose      = false

	// MinAttempts and MaxAttempts bound the per-pass probe budget.
	MinAttempts = 1
	MaxAttempts = 5
)

// Settings represents the configuration for the watchdog. Everything is
// fixed at deployment time; a scheduler invocation runs with whatever the
// config file and defaults resolve to.
type Settings struct {
	Unit         string        `yaml:"unit"`
	Attempts     int           `yaml:"attempts"`
	AttemptDelay time.Duration `yaml:"attemptDelay"`
	Interval     time.Duration `yaml:"interval"`
	DockerHost   string        `yaml:"dockerHost"`
	Containers   []string      `yaml:"containers"`
	ComposeFile  string        `yaml:"composeFile"`
	UserMode     bool          `yaml:"userMode"`
	Verbose      bool          `yaml:"verbose"`
}

// Validate rejects settings the watchdog cannot run with.
func (s *Settings) Validate() error {
	if s.Attempts < MinAttempts || s.Attempts > MaxAttempts {
		return fmt.Errorf("attempts must be between %d and %d, got %d", MinAttempts, MaxAttempts, s.Attempts)
	}
	if s.AttemptDelay < 0 {
		return fmt.Errorf("attemptDelay must not be negative, got %s", s.AttemptDelay)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.Interval)
	}
	return nil
}

// Implementation of ConfigProvider methods for defaultConfigProvider

func (p *defaultConfigProvider) SetConfig(c *Settings) {
	p.cfg = c
}

func (p *defaultConfigProvider) GetConfig() *Settings {
	return p.cfg
}

func (p *defaultConfigProvider) SetConfigFilePath(path string) {
	viper.SetConfigFile(path)
}

func (p *defaultConfigProvider) InitConfig() *Settings {
	p.cfg = initConfigInternal()
	return p.cfg
}

// For backward compatibility - pass through to default provider

// SetConfig sets the application configuration.
func SetConfig(c *Settings) {
	defaultProvider.SetConfig(c)
	cfg = c
}

// GetConfig returns the current application configuration.
func GetConfig() *Settings {
	return defaultProvider.GetConfig()
}

// SetConfigFilePath sets the configuration file path.
func SetConfigFilePath(p string) {
	defaultProvider.SetConfigFilePath(p)
}

// InitConfig initializes the application configuration.
func InitConfig() *Settings {
	cfg = defaultProvider.InitConfig()
	return cfg
}

// Internal function to initialize configuration.
func initConfigInternal() *Settings {
	cfg := &Settings{
		Unit:         DefaultUnit,
		Attempts:     DefaultAttempts,
		AttemptDelay: DefaultAttemptDelay,
		Interval:     DefaultInterval,
		UserMode:     DefaultUserMode,
		Verbose:      DefaultVerbose,
	}

	viper.SetDefault("unit", DefaultUnit)
	viper.SetDefault("attempts", DefaultAttempts)
	viper.SetDefault("attemptDelay", DefaultAttemptDelay)
	viper.SetDefault("interval", DefaultInterval)
	viper.SetDefault("userMode", DefaultUserMode)
	viper.SetDefault("verbose", DefaultVerbose)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(os.ExpandEnv("$HOME/.config/docker-watchdog"))
	viper.AddConfigPath("/etc/opt/docker-watchdog")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		panic(err)
	}

	return cfg
}
