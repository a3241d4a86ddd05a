package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BotConfig holds the social bot settings. Secrets come from the environment,
// behaviour tuning from an optional YAML file.
type BotConfig struct {
	APIKey       string `yaml:"-"`
	APISecret    string `yaml:"-"`
	AccessToken  string `yaml:"-"`
	AccessSecret string `yaml:"-"`
	AnthropicKey string `yaml:"-"`

	Handle    string `yaml:"handle"`
	SoulPath  string `yaml:"soulPath"`
	StatePath string `yaml:"statePath"`
	AssetsDir string `yaml:"assetsDir"`

	Schedule BotSchedule `yaml:"schedule"`
	Model    BotModel    `yaml:"model"`
	Memory   BotMemory   `yaml:"memory"`
	Targets  BotTargets  `yaml:"targets"`
}

type BotSchedule struct {
	PostsPerDay int `yaml:"postsPerDay"`
	StartHour   int `yaml:"startHour"`
	EndHour     int `yaml:"endHour"`
	UTCOffset   int `yaml:"utcOffset"` // posting hours are local to this offset
}

type BotModel struct {
	Name        string  `yaml:"name"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

type BotMemory struct {
	Backend     string        `yaml:"backend"` // file | mongo
	Path        string        `yaml:"path"`
	MaxEntries  int           `yaml:"maxEntries"`
	KeepEntries int           `yaml:"keepEntries"`
	MongoURI    string        `yaml:"-"`
	MongoDB     string        `yaml:"mongoDb"`
	TTL         time.Duration `yaml:"ttl"`
}

// BotTargets overrides the built-in engagement lists when non-empty.
type BotTargets struct {
	Builders      []string `yaml:"builders"`
	Influencers   []string `yaml:"influencers"`
	SearchQueries []string `yaml:"searchQueries"`
}

func DefaultBotConfig() BotConfig {
	return BotConfig{
		Handle:    "AgentClaw_",
		SoulPath:  "SOUL.md",
		StatePath: "bot-state.json",
		AssetsDir: "assets",
		Schedule: BotSchedule{
			PostsPerDay: 6,
			StartHour:   8,
			EndHour:     23,
			UTCOffset:   -5,
		},
		Model: BotModel{
			Name:        "claude-sonnet-4-20250514",
			MaxTokens:   300,
			Temperature: 0.8,
		},
		Memory: BotMemory{
			Backend:     "file",
			Path:        "memory.jsonl",
			MaxEntries:  5000,
			KeepEntries: 1000,
			MongoDB:     "agentclaw",
			TTL:         30 * 24 * time.Hour,
		},
	}
}

// LoadBot reads BOT_CONFIG (default bot.yaml, optional) over the defaults and
// then applies environment overrides.
func LoadBot() (BotConfig, error) {
	cfg := DefaultBotConfig()

	path := getEnv("BOT_CONFIG", "bot.yaml")
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}

	cfg.APIKey = os.Getenv("X_API_KEY")
	cfg.APISecret = os.Getenv("X_API_SECRET")
	cfg.AccessToken = os.Getenv("X_ACCESS_TOKEN")
	cfg.AccessSecret = os.Getenv("X_ACCESS_TOKEN_SECRET")
	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")

	cfg.StatePath = getEnv("BOT_STATE_PATH", cfg.StatePath)
	cfg.SoulPath = getEnv("BOT_SOUL_PATH", cfg.SoulPath)
	cfg.Memory.Backend = strings.ToLower(getEnv("BOT_MEMORY_BACKEND", cfg.Memory.Backend))
	cfg.Memory.Path = getEnv("BOT_MEMORY_PATH", cfg.Memory.Path)
	cfg.Memory.MongoURI = os.Getenv("MONGO_URI")
	cfg.Memory.MongoDB = getEnv("MONGO_DB", cfg.Memory.MongoDB)
	cfg.Model.Name = getEnv("LLM_MODEL", cfg.Model.Name)
	cfg.Model.MaxTokens = getInt("BOT_MAX_TOKENS", cfg.Model.MaxTokens)
	cfg.Model.Temperature = getFloat("BOT_TEMPERATURE", cfg.Model.Temperature)

	return cfg, nil
}

// Validate reports every missing credential at once.
func (c BotConfig) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"X_API_KEY":             c.APIKey,
		"X_API_SECRET":          c.APISecret,
		"X_ACCESS_TOKEN":        c.AccessToken,
		"X_ACCESS_TOKEN_SECRET": c.AccessSecret,
		"ANTHROPIC_API_KEY":     c.AnthropicKey,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Schedule.PostsPerDay <= 0 {
		return errors.New("schedule.postsPerDay must be positive")
	}
	if c.Schedule.EndHour < c.Schedule.StartHour {
		return errors.New("schedule.endHour must not be before schedule.startHour")
	}
	if c.Memory.Backend == "mongo" && c.Memory.MongoURI == "" {
		return errors.New("MONGO_URI is required for the mongo memory backend")
	}
	return nil
}
