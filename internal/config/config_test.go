package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("CLICK_SERVICE_ID", "30067")
	t.Setenv("CLICK_MERCHANT_ID", "22535")
	t.Setenv("CLICK_RETURN_URL", "https://t.me/bot")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg := Load()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-4o", cfg.CompletionModel)
	assert.Equal(t, 4, cfg.MaxToolRounds)
	assert.Equal(t, "clip", cfg.EmbedderType)
	assert.Equal(t, "qdrant", cfg.CatalogType)
	assert.Equal(t, "https://my.click.uz/services/pay/", cfg.ClickBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 64, cfg.SessionMaxTurns)
	assert.Equal(t, "8080", cfg.OpsPort)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPLETION_TIMEOUT", "90s")
	t.Setenv("MAX_TOOL_ROUNDS", "2")
	t.Setenv("EMBEDDER_TYPE", "openai")
	t.Setenv("CATALOG_TYPE", "memory")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 2, cfg.MaxToolRounds)
	assert.Equal(t, "openai", cfg.EmbedderType)
	assert.Equal(t, "memory", cfg.CatalogType)
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	setRequired(t)

	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN",
		"OPENAI_API_KEY",
		"CLICK_SERVICE_ID",
	} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			assert.Error(t, Load().Validate())
		})
	}
}

func TestValidateRejectsUnknownModes(t *testing.T) {
	setRequired(t)

	t.Setenv("EMBEDDER_TYPE", "bert")
	assert.Error(t, Load().Validate())

	t.Setenv("EMBEDDER_TYPE", "clip")
	t.Setenv("CATALOG_TYPE", "postgres")
	assert.Error(t, Load().Validate())
}
