package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
)

func TestLLMConfig_PrimaryConfig_FlatFallback(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:     "openrouter",
		APIKey:       "sk-flat",
		DefaultModel: "meta-llama/llama-4-maverick",
		MaxTokens:    1024,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openrouter", primary.Provider)
	assert.Equal(t, "sk-flat", primary.APIKey)
	assert.Equal(t, "meta-llama/llama-4-maverick", primary.DefaultModel)
	assert.Equal(t, 1024, primary.MaxTokens)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestLLMConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "flat-should-be-ignored",
		Primary: config.LLMProviderConfig{
			Provider:     "openai",
			APIKey:       "sk-primary",
			DefaultModel: "gpt-4o",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
	assert.Equal(t, "gpt-4o", primary.DefaultModel)
}

func TestLLMConfig_SecondaryConfig(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openrouter", APIKey: "sk"}
	assert.Nil(t, cfg.SecondaryConfig())

	cfg.Secondary = config.LLMProviderConfig{Provider: "openai", APIKey: "sk-2"}
	secondary := cfg.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "openai", secondary.Provider)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "meta-llama/llama-4-maverick", cfg.LLM.DefaultModel)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 10, cfg.Chat.HistoryWindow)
	assert.Equal(t, int64(5), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, config.StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "", cfg.S3.Bucket)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCEXTRACT_LLM_API_KEY", "sk-env")
	t.Setenv("DOCEXTRACT_LLM_SECONDARY_PROVIDER", "openai")
	t.Setenv("DOCEXTRACT_CHAT_HISTORY_WINDOW", "4")
	t.Setenv("DOCEXTRACT_STORE_DRIVER", "Redis")
	t.Setenv("DOCEXTRACT_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DOCEXTRACT_SERVER_PORT", "")
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.LLM.PrimaryConfig().APIKey)
	require.NotNil(t, cfg.LLM.SecondaryConfig())
	assert.Equal(t, "openai", cfg.LLM.SecondaryConfig().Provider)
	assert.Equal(t, 4, cfg.Chat.HistoryWindow)
	assert.Equal(t, config.StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			LLM:    config.LLMConfig{Provider: "openrouter", APIKey: "sk"},
			Store:  config.StoreConfig{Driver: config.StoreDriverRedis},
			Upload: config.UploadConfig{MaxFileSizeMB: 5},
		}
	}

	assert.NoError(t, valid().Validate())

	missingKey := valid()
	missingKey.LLM.APIKey = ""
	assert.ErrorContains(t, missingKey.Validate(), "api key")

	badDriver := valid()
	badDriver.Store.Driver = "mongo"
	assert.ErrorContains(t, badDriver.Validate(), "unknown store driver: mongo")

	badSize := valid()
	badSize.Upload.MaxFileSizeMB = 0
	assert.Error(t, badSize.Validate())
}
