package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Verbose bool         `mapstructure:"verbose"`
}

type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	PremiumModel  string `mapstructure:"premium_model"`
	StandardModel string `mapstructure:"standard_model"`
}

const (
	DefaultBaseURL       = "https://api.openai.com"
	DefaultPremiumModel  = "gpt-4"
	DefaultStandardModel = "gpt-3.5-turbo"
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	// Verbosity may arrive as a raw env string; "true" in any casing enables it.
	if !cfg.Verbose {
		cfg.Verbose = strings.EqualFold(strings.TrimSpace(viper.GetString("verbose")), "true")
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.OpenAI.BaseURL) == "" {
		c.OpenAI.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(c.OpenAI.PremiumModel) == "" {
		c.OpenAI.PremiumModel = DefaultPremiumModel
	}
	if strings.TrimSpace(c.OpenAI.StandardModel) == "" {
		c.OpenAI.StandardModel = DefaultStandardModel
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return &ConfigurationError{Reason: "you need to set DEVCHAT_OPENAI_API_KEY in your environment\n" +
			"if you have updated it already, please restart your terminal"}
	}
	return nil
}
