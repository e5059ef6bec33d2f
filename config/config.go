// Package config loads Rivulet settings from the environment and an
// optional rivulet.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the demo runtime settings.
type Config struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	LogLevel    string `mapstructure:"log_level"`
	ScenarioDir string `mapstructure:"scenario_dir"`

	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
}

// envKeys are bound explicitly: viper's Unmarshal only sees
// environment values for keys it already knows about.
var envKeys = []string{
	"provider",
	"model",
	"log_level",
	"scenario_dir",
	"openai_api_key",
	"anthropic_api_key",
	"gemini_api_key",
}

// Load reads configuration from rivulet.yaml (if present in path or
// the working directory) and the process environment. Environment
// values override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("rivulet")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// CheckCredential verifies that the credential for the selected
// provider is present. A missing credential is a startup failure,
// never a runtime one.
func (c *Config) CheckCredential() error {
	var key, envVar string
	switch c.Provider {
	case "openai":
		key, envVar = c.OpenAIAPIKey, "OPENAI_API_KEY"
	case "anthropic":
		key, envVar = c.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case "gemini":
		key, envVar = c.GeminiAPIKey, "GEMINI_API_KEY"
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if key == "" {
		return fmt.Errorf("%s not found: create a .env file or export %s=your_api_key_here", envVar, envVar)
	}
	return nil
}
