// Package config loads orq settings from defaults, an optional config file
// and the environment using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CredentialEnv is the environment variable holding the OpenRouter API key.
const CredentialEnv = "OPENROUTER_API_KEY"

// ErrMissingCredential is returned by Validate when no API key is configured.
var ErrMissingCredential = errors.New(CredentialEnv + " is not set")

// Settings is the resolved, typed configuration.
type Settings struct {
	API     APISettings     `mapstructure:"api"`
	Model   ModelSettings   `mapstructure:"model"`
	App     AppSettings     `mapstructure:"app"`
	Logging LoggingSettings `mapstructure:"logging"`
}

// APISettings configures the upstream endpoint.
type APISettings struct {
	URL string `mapstructure:"url"`
	// Key is read from CredentialEnv only, never from a config file.
	Key     string        `mapstructure:"-"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ModelSettings configures model selection.
type ModelSettings struct {
	Default string `mapstructure:"default"`
}

// AppSettings holds the attribution sent with each request.
type AppSettings struct {
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

// LoggingSettings selects the level and encoding of NewLogger.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("api.url", "https://openrouter.ai/api/v1")
	v.SetDefault("api.timeout", "5m")
	v.SetDefault("model.default", "google/gemini-2.5-flash")
	v.SetDefault("app.referer", "")
	v.SetDefault("app.title", "orq")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("orq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/orq")
		v.AddConfigPath("/etc/orq")
	}

	// Environment variable support: ORQ_API_TIMEOUT=30s
	v.SetEnvPrefix("ORQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file in the search path is fine -- use defaults
	}

	return v, nil
}

// Load decodes v into Settings and takes the credential from the process
// environment.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	s.API.Key = os.Getenv(CredentialEnv)
	return &s, nil
}

// Validate reports configuration that makes a request impossible.
func (s *Settings) Validate() error {
	if s.API.Key == "" {
		return ErrMissingCredential
	}
	if s.API.URL == "" {
		return errors.New("api.url must not be empty")
	}
	if s.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", s.API.Timeout)
	}
	return nil
}
