// Package setup builds providers and services from configuration.
package setup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nesventory/identifier/internal/apikey"
	"github.com/nesventory/identifier/internal/config"
	"github.com/nesventory/identifier/internal/gemini"
	"github.com/nesventory/identifier/internal/identification"
	"github.com/nesventory/identifier/internal/ollama"
	"github.com/nesventory/identifier/internal/openai"
	"github.com/nesventory/identifier/internal/providers"
)

// Logger installs the process-wide slog handler
func Logger(cfg *config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)
}

// GeminiKeys is the key store for Gemini: the GEMINI_API_KEY environment
// variable, then the configured key, then the remote key endpoint
func GeminiKeys(cfg *config.Config) *apikey.Store {
	sources := []apikey.Source{apikey.Env("GEMINI_API_KEY"), apikey.Static(cfg.Gemini.APIKey)}
	if cfg.Gemini.KeyURL != "" {
		sources = append(sources, apikey.NewRemote(cfg.Gemini.KeyURL))
	}
	return apikey.NewStore("gemini", sources...)
}

func openAIKeys(cfg *config.Config) *apikey.Store {
	return apikey.NewStore("openai", apikey.Env("OPENAI_API_KEY"), apikey.Static(cfg.OpenAI.APIKey))
}

// Provider returns the configured AI provider behind the rate limiter
func Provider(cfg *config.Config, geminiKeys *apikey.Store) (providers.Provider, error) {
	var p providers.Provider
	switch cfg.Provider {
	case "gemini":
		p = gemini.New(geminiKeys)
	case "openai":
		p = openai.New(openAIKeys(cfg)).WithBaseURL(cfg.OpenAI.BaseURL)
	case "ollama":
		p = ollama.New(cfg.Ollama.URL)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return providers.Throttle(p, cfg.RateLimit.PerSecond, cfg.RateLimit.Burst), nil
}

// Service builds the identification service for the configured provider
func Service(cfg *config.Config, geminiKeys *apikey.Store) (*identification.Service, error) {
	p, err := Provider(cfg, geminiKeys)
	if err != nil {
		return nil, err
	}
	svc := identification.NewService(p, cfg.Model, cfg.Temperature)
	slog.Info("Identification service ready", "provider", svc.ProviderName(), "model", svc.Model())
	return svc, nil
}
