package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultEngineConfig
	v.SetDefault("engine.evaluator_url", "http://localhost:8080")
	v.SetDefault("engine.request_timeout", "10s")
	v.SetDefault("engine.debounce_window", "150ms")
	v.SetDefault("engine.database_url", "")
	v.SetDefault("engine.api_key", "")

	// Bind environment variables with FG_ prefix
	v.SetEnvPrefix("FG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &EngineConfig{
		EvaluatorURL:   v.GetString("engine.evaluator_url"),
		RequestTimeout: v.GetDuration("engine.request_timeout"),
		DebounceWindow: v.GetDuration("engine.debounce_window"),
		DatabaseURL:    v.GetString("engine.database_url"),
		APIKey:         v.GetString("engine.api_key"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks evaluator URL presence and positive durations.
func validateConfig(cfg *EngineConfig) error {
	if cfg.EvaluatorURL == "" {
		return fmt.Errorf("evaluator_url must be set")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.DebounceWindow <= 0 {
		return fmt.Errorf("debounce_window must be positive, got %v", cfg.DebounceWindow)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("engine.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use FG_HMAC_SECRET environment variable)")
	}
	return nil
}
