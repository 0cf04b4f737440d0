package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`

	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		KeyURL string `mapstructure:"key_url"`
	} `mapstructure:"gemini"`

	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`

	Ollama struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"ollama"`

	Server struct {
		Port           string   `mapstructure:"port"`
		StaticDir      string   `mapstructure:"static_dir"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`

	Submission struct {
		InventoryURL string        `mapstructure:"inventory_url"`
		TrainingURL  string        `mapstructure:"training_url"`
		Source       string        `mapstructure:"source"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"submission"`

	Review struct {
		Timeout      time.Duration `mapstructure:"timeout"`
		FoundingYear int           `mapstructure:"founding_year"`
	} `mapstructure:"review"`

	RateLimit struct {
		PerSecond float64 `mapstructure:"per_second"`
		Burst     int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// envBindings maps config keys to environment variables. When several are
// listed the first one set wins.
var envBindings = map[string][]string{
	"provider":                 {"IDENTIFY_PROVIDER"},
	"model":                    {"IDENTIFY_MODEL"},
	"temperature":              {"IDENTIFY_TEMPERATURE"},
	"gemini.api_key":           {"GEMINI_API_KEY"},
	"gemini.key_url":           {"GEMINI_KEY_URL"},
	"openai.api_key":           {"OPENAI_API_KEY"},
	"openai.base_url":          {"OPENAI_BASE_URL"},
	"ollama.url":               {"OLLAMA_URL"},
	"server.port":              {"HOST_PORT", "PORT"},
	"server.allowed_origins":   {"CORS_ALLOWED_ORIGINS"},
	"submission.inventory_url": {"INVENTORY_URL"},
	"submission.training_url":  {"TRAINING_URL"},
	"log.level":                {"LOG_LEVEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.key_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("server.port", "8002")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("submission.inventory_url", "")
	v.SetDefault("submission.training_url", "")
	v.SetDefault("submission.source", "nesventory-identifier")
	v.SetDefault("submission.timeout", 10*time.Second)
	v.SetDefault("review.timeout", 90*time.Second)
	v.SetDefault("review.founding_year", 1976)
	v.SetDefault("rate_limit.per_second", 2.0)
	v.SetDefault("rate_limit.burst", 4)
	v.SetDefault("log.level", "info")
}

// Load reads .env, an optional config file and the environment, in
// increasing order of precedence. An empty path searches for config.yaml
// in the working directory and ./configs.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range", c.Temperature)
	}
	if c.Review.FoundingYear <= 0 {
		return fmt.Errorf("founding year must be positive")
	}
	return nil
}

// LogLevel maps the configured level name to slog
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
