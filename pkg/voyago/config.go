package voyago

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/arielhakim/voyago/pkg/errorsx"
)

// DefaultInstructions is the system prompt of the travel planning agent.
const DefaultInstructions = "You are a helpful AI Agent that can help plan vacations for customers at random destinations."

type Config struct {
	LLM         VendorConfig  `mapstructure:"llm"`
	Agent       AgentConfig   `mapstructure:"agent"`
	Amadeus     AmadeusConfig `mapstructure:"amadeus"`
	Server      ServerConfig  `mapstructure:"server"`
	Environment string        `mapstructure:"environment"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	Privacy     PrivacyConfig `mapstructure:"privacy"`
}

type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type AgentConfig struct {
	Name         string `mapstructure:"name"`
	Instructions string `mapstructure:"instructions"`
	MaxRounds    int    `mapstructure:"max_rounds"`
}

type AmadeusConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

// LoadConfig reads an optional YAML config file and applies the
// environment overrides the original deployment used (AZURE_OPENAI_* and
// AMADEUS_*). An empty path loads defaults plus environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("agent.name", "travel")
	v.SetDefault("agent.instructions", DefaultInstructions)
	v.SetDefault("agent.max_rounds", 5)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("privacy.redact_pii", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(fmt.Errorf("read config: %w", err), errorsx.ReasonConfig)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("decode config: %w", err), errorsx.ReasonConfig)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg.LLM.Settings == nil {
		cfg.LLM.Settings = map[string]any{}
	}
	setFromEnv(cfg.LLM.Settings, "base_url", "AZURE_OPENAI_ENDPOINT")
	setFromEnv(cfg.LLM.Settings, "api_key", "AZURE_OPENAI_API_KEY")
	setFromEnv(cfg.LLM.Settings, "model", "AZURE_OPENAI_MODEL_ID")
	if val := os.Getenv("AMADEUS_API_KEY"); val != "" {
		cfg.Amadeus.APIKey = val
	}
	if val := os.Getenv("AMADEUS_API_SECRET"); val != "" {
		cfg.Amadeus.APISecret = val
	}
}

func setFromEnv(settings map[string]any, key, env string) {
	if val := strings.TrimSpace(os.Getenv(env)); val != "" {
		settings[key] = val
	}
}

// Validate fails fast on missing credentials so a misconfigured process
// never reaches the model.
func (c Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch provider {
	case "openai":
		for _, key := range []string{"api_key", "model"} {
			if !hasSetting(c.LLM.Settings, key) {
				return errorsx.Newf(errorsx.ReasonConfig, "llm.settings.%s is required for provider openai", key)
			}
		}
	case "mock":
	case "":
		return errorsx.Newf(errorsx.ReasonConfig, "llm.provider is required")
	default:
		return errorsx.Newf(errorsx.ReasonConfig, "unknown llm provider: %s", provider)
	}
	if c.Agent.MaxRounds < 0 {
		return errorsx.Newf(errorsx.ReasonConfig, "agent.max_rounds must not be negative")
	}
	if (c.Amadeus.APIKey == "") != (c.Amadeus.APISecret == "") {
		return errorsx.Newf(errorsx.ReasonConfig, "amadeus.api_key and amadeus.api_secret must be set together")
	}
	return nil
}

// AmadeusEnabled reports whether flight search tools should be registered.
func (c Config) AmadeusEnabled() bool {
	return c.Amadeus.APIKey != "" && c.Amadeus.APISecret != ""
}

func hasSetting(settings map[string]any, key string) bool {
	for k, v := range settings {
		if strings.EqualFold(strings.NewReplacer("_", "", "-", "").Replace(k), strings.NewReplacer("_", "", "-", "").Replace(key)) {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s) != ""
			}
			return v != nil
		}
	}
	return false
}
