package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultModel     = "gemini-2.5-flash"
	DefaultAIAttempt = 3
	DefaultAITimeout = 30 * time.Second
	DefaultAddr      = "127.0.0.1:8080"
)

type Config struct {
	// Actor is the id of the acting user (must exist in the seed's members).
	Actor string `mapstructure:"actor"`
	// Seed is an optional path to a board JSON file; empty uses the built-in demo board.
	Seed   string `mapstructure:"seed"`
	Format string `mapstructure:"format"`

	AI     AIConfig     `mapstructure:"ai"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	APIKey   string        `mapstructure:"apiKey"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts uint          `mapstructure:"attempts"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File receives logs. Empty means stderr for CLI/server and discard for the TUI.
	File string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Token, when set, is required as a bearer token on every API route but health.
	Token string `mapstructure:"token"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.kanbanflow).
	if v := strings.TrimSpace(os.Getenv("KANBANFLOW_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kanbanflow"), nil
}

// NewViper returns a viper instance with defaults and environment bindings.
// Env vars use the KANBANFLOW_ prefix with dots replaced by underscores
// (KANBANFLOW_AI_MODEL, KANBANFLOW_LOG_LEVEL, ...). The AI key also honors
// GEMINI_API_KEY and API_KEY.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KANBANFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("actor", "u1")
	v.SetDefault("seed", "")
	v.SetDefault("format", "json")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.attempts", DefaultAIAttempt)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.token", "")

	_ = v.BindEnv("ai.apiKey", "KANBANFLOW_AI_APIKEY", "GEMINI_API_KEY", "API_KEY")
	return v
}

// LoadConfig reads the config file (explicit path, or config.{toml,json,yaml} in ConfigDir)
// into v and decodes the merged result. A missing default config file is not an error.
func LoadConfig(v *viper.Viper, path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName("config")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Actor = strings.TrimSpace(cfg.Actor)
	cfg.AI.APIKey = strings.TrimSpace(cfg.AI.APIKey)
	cfg.Server.Token = strings.TrimSpace(cfg.Server.Token)
	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = DefaultModel
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = DefaultAITimeout
	}
	if cfg.AI.Attempts == 0 {
		cfg.AI.Attempts = DefaultAIAttempt
	}
	return cfg, nil
}
