package setup

import (
	"testing"

	"github.com/nesventory/identifier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	for _, name := range []string{"gemini", "openai", "ollama"} {
		t.Run(name, func(t *testing.T) {
			cfg := &config.Config{Provider: name}
			svc, err := Service(cfg, GeminiKeys(cfg))
			require.NoError(t, err)
			assert.Equal(t, name, svc.ProviderName())
			assert.NotEmpty(t, svc.Model())
		})
	}
}

func TestUnknownProvider(t *testing.T) {
	cfg := &config.Config{Provider: "bard"}
	_, err := Provider(cfg, GeminiKeys(cfg))
	assert.Error(t, err)
}

func TestGeminiKeysPrefersEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg := &config.Config{}
	cfg.Gemini.APIKey = "from-config"

	key, err := GeminiKeys(cfg).Key(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}
