package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the marketplace server settings.
type Config struct {
	Port    string
	GinMode string

	PostgresURI   string
	RedisAddr     string
	AgentCacheTTL time.Duration

	LLMProvider    string // anthropic | vertex
	LLMModel       string
	AnthropicKey   string
	VertexProject  string
	VertexLocation string

	ChatMaxTokens            int
	ChatFallbackSystemPrompt string

	JWTSecret    string
	AuthRequired bool
	TokenTTL     time.Duration

	GCSBucket     string
	GCSPublicRead bool

	// WSAllowedOrigins limits browser origins on the chat WebSocket; empty allows all.
	WSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: os.Getenv("GIN_MODE"),

		PostgresURI:   os.Getenv("POSTGRES_URI"),
		RedisAddr:     redisAddr(),
		AgentCacheTTL: getDuration("AGENT_CACHE_TTL", 30*time.Second),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "anthropic")),
		LLMModel:       os.Getenv("LLM_MODEL"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		VertexProject:  os.Getenv("VERTEX_PROJECT"),
		VertexLocation: getEnv("VERTEX_LOCATION", "us-central1"),

		ChatMaxTokens:            getInt("CHAT_MAX_TOKENS", 2048),
		ChatFallbackSystemPrompt: getEnv("CHAT_FALLBACK_SYSTEM_PROMPT", "You are a helpful AI assistant."),

		JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		AuthRequired: getBool("AUTH_REQUIRED", false),
		TokenTTL:     getDuration("AUTH_TOKEN_TTL", 24*time.Hour),

		GCSBucket:     os.Getenv("GCS_BUCKET"),
		GCSPublicRead: getBool("GCS_PUBLIC_READ", false),

		WSAllowedOrigins: getList("WS_ALLOWED_ORIGINS"),
	}
}

func redisAddr() string {
	for _, k := range []string{"REDIS_ADDR", "REDIS_URI", "REDIS_URL"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
