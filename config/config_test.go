package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_ADDR", "REDIS_URI", "REDIS_URL", "CHAT_MAX_TOKENS", "AGENT_CACHE_TTL", "AUTH_REQUIRED", "LLM_PROVIDER"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.AgentCacheTTL)
	assert.Equal(t, 2048, cfg.ChatMaxTokens)
	assert.Equal(t, "You are a helpful AI assistant.", cfg.ChatFallbackSystemPrompt)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.False(t, cfg.AuthRequired)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CHAT_MAX_TOKENS", "512")
	t.Setenv("AGENT_CACHE_TTL", "1m")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("LLM_PROVIDER", "Vertex")
	t.Setenv("GCS_PUBLIC_READ", "1")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://agentclaw.xyz, ,http://localhost:5173")

	cfg := Load()
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisAddr)
	assert.Equal(t, 512, cfg.ChatMaxTokens)
	assert.Equal(t, time.Minute, cfg.AgentCacheTTL)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, "vertex", cfg.LLMProvider)
	assert.True(t, cfg.GCSPublicRead)
	assert.Equal(t, []string{"https://agentclaw.xyz", "http://localhost:5173"}, cfg.WSAllowedOrigins)
}

func TestLoadBotYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  postsPerDay: 4
model:
  temperature: 0.5
targets:
  builders: [alice, bob]
`), 0o600))

	t.Setenv("BOT_CONFIG", path)
	t.Setenv("LLM_MODEL", "")
	t.Setenv("BOT_MAX_TOKENS", "")
	t.Setenv("BOT_TEMPERATURE", "")
	t.Setenv("BOT_MEMORY_BACKEND", "")

	cfg, err := LoadBot()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Schedule.PostsPerDay)
	assert.Equal(t, 8, cfg.Schedule.StartHour)
	assert.Equal(t, 23, cfg.Schedule.EndHour)
	assert.Equal(t, 0.5, cfg.Model.Temperature)
	assert.Equal(t, 300, cfg.Model.MaxTokens)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Targets.Builders)
	assert.Equal(t, "file", cfg.Memory.Backend)
}

func TestLoadBotMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("LLM_MODEL", "")

	cfg, err := LoadBot()
	require.NoError(t, err)
	assert.Equal(t, DefaultBotConfig().Schedule, cfg.Schedule)
}

func TestBotValidateListsMissingCredentials(t *testing.T) {
	cfg := DefaultBotConfig()
	cfg.APIKey = "k"
	cfg.AnthropicKey = "a"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, "missing required environment variables: X_ACCESS_TOKEN, X_ACCESS_TOKEN_SECRET, X_API_SECRET", err.Error())

	cfg.APISecret, cfg.AccessToken, cfg.AccessSecret = "s", "t", "ts"
	assert.NoError(t, cfg.Validate())
}

func TestRedisOptions(t *testing.T) {
	_, err := redisOptions("  ")
	require.Error(t, err)

	opt, err := redisOptions("cache:6379")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opt.Addr)
	assert.Equal(t, time.Second, opt.ReadTimeout)

	opt, err = redisOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
}

func TestMongoClientOptions(t *testing.T) {
	t.Setenv("MONGO_FORCE_TLS_CONFIG", "")

	opts := mongoClientOptions("mongodb://localhost:27017")
	require.NotNil(t, opts.AppName)
	assert.Equal(t, "agentclaw-xbot", *opts.AppName)
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(4), *opts.MaxPoolSize)
	assert.Nil(t, opts.TLSConfig)
}
