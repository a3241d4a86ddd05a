package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diero-hl/agentclaw/config"
	"github.com/diero-hl/agentclaw/internal/bot"
	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/bot/state"
	"github.com/diero-hl/agentclaw/internal/logger"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
	"github.com/diero-hl/agentclaw/internal/providers/social"
	mongorepo "github.com/diero-hl/agentclaw/internal/repositories/mongo"
)

func main() {
	_ = godotenv.Load()
	if os.Getenv("LOG_FORMAT") == "" {
		os.Setenv("LOG_FORMAT", "text")
	}
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(log).ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	bot      *bot.Bot
	provider llm.Provider
}

func (a *app) close() {
	if a.provider != nil {
		_ = a.provider.Close()
	}
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(context.Background())
	}
}

// setup loads configuration, state and memory, authenticates against X and
// builds the bot. Every mode goes through it.
func setup(ctx context.Context, log *logrus.Logger) (*app, error) {
	cfg, err := config.LoadBot()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := state.Load(cfg.StatePath)
	switch {
	case errors.Is(err, state.ErrCorrupt):
		log.WithError(err).Warn("state file unreadable, starting from defaults")
	case err != nil:
		return nil, err
	}

	mem, err := openMemory(cfg)
	if err != nil {
		return nil, err
	}

	x := social.New(social.Credentials{
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		AccessToken:  cfg.AccessToken,
		AccessSecret: cfg.AccessSecret,
	})
	me, err := x.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}
	log.Infof("authenticated as @%s", me.Username)

	provider, err := llm.NewAnthropic(cfg.AnthropicKey, cfg.Model.Name)
	if err != nil {
		return nil, err
	}

	b := bot.New(x, provider, mem, st, bot.Options{
		Config: cfg,
		Soul:   bot.LoadSoul(cfg.SoulPath),
		Log:    log,
	})
	return &app{bot: b, provider: provider}, nil
}

func openMemory(cfg config.BotConfig) (memory.Log, error) {
	switch cfg.Memory.Backend {
	case "mongo":
		if err := config.InitMongo(cfg.Memory.MongoURI); err != nil {
			return nil, fmt.Errorf("mongo init: %w", err)
		}
		if err := config.EnsureMongoIndexes(cfg.Memory.MongoDB); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongorepo.NewMemoryRepo(config.MongoClient.Database(cfg.Memory.MongoDB), cfg.Memory.TTL), nil
	case "file", "":
		return memory.NewFileLog(cfg.Memory.Path, cfg.Memory.MaxEntries, cfg.Memory.KeepEntries), nil
	}
	return nil, fmt.Errorf("unknown memory backend %q", cfg.Memory.Backend)
}

// run wraps a mode with setup and teardown.
func run(log *logrus.Logger, fn func(ctx context.Context, b *bot.Bot, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a.bot, args)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	loop := run(log, func(ctx context.Context, b *bot.Bot, _ []string) error {
		log.Info("starting autonomous loop: post, reply, follow-back, bio, engage, influencers, deploy")
		return b.Run(ctx)
	})

	root := &cobra.Command{
		Use:           "xbot",
		Short:         "Agentclaw autonomous X agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          loop,
	}

	task := func(name string) func(ctx context.Context, b *bot.Bot, _ []string) error {
		return func(ctx context.Context, b *bot.Bot, _ []string) error { return b.RunTaskNow(ctx, name) }
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "loop",
			Short: "Run every task on a schedule until interrupted (default)",
			Args:  cobra.NoArgs,
			RunE:  loop,
		},
		&cobra.Command{
			Use:   "tweet [topic]",
			Short: "Post one tweet and exit",
			Args:  cobra.MaximumNArgs(1),
			RunE: run(log, func(ctx context.Context, b *bot.Bot, args []string) error {
				topic := ""
				if len(args) == 1 {
					topic = args[0]
				}
				_, err := b.TweetOnce(ctx, topic)
				return err
			}),
		},
		&cobra.Command{Use: "reply", Short: "Check and reply to mentions", Args: cobra.NoArgs, RunE: run(log, task("reply"))},
		&cobra.Command{Use: "follow", Short: "Follow back followers", Args: cobra.NoArgs, RunE: run(log, task("follow"))},
		&cobra.Command{Use: "bio", Short: "Update the profile bio", Args: cobra.NoArgs, RunE: run(log, task("bio"))},
		&cobra.Command{Use: "engage", Short: "Search and engage with Base and crypto tweets", Args: cobra.NoArgs, RunE: run(log, task("engage"))},
		&cobra.Command{
			Use:   "intro",
			Short: "Post the introduction thread and pin it",
			Args:  cobra.NoArgs,
			RunE: run(log, func(ctx context.Context, b *bot.Bot, _ []string) error {
				_, err := b.Intro(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "profile",
			Short: "Upload the profile picture and banner from the assets directory",
			Args:  cobra.NoArgs,
			RunE: run(log, func(ctx context.Context, b *bot.Bot, _ []string) error {
				b.Profile(ctx)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show bot stats",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return status(cmd, log)
			},
		},
		&cobra.Command{
			Use:   "survival",
			Short: "Post the survival story tweet",
			Args:  cobra.NoArgs,
			RunE: run(log, func(ctx context.Context, b *bot.Bot, _ []string) error {
				_, err := b.Survival(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "reply-to <tweet-url-or-id>",
			Short: "Reply to one specific tweet and like it",
			Args:  cobra.ExactArgs(1),
			RunE: run(log, func(ctx context.Context, b *bot.Bot, args []string) error {
				_, err := b.ReplyTo(ctx, args[0])
				return err
			}),
		},
	)
	return root
}

// status only reads local state and memory, so it needs no credentials.
func status(cmd *cobra.Command, log *logrus.Logger) error {
	cfg, err := config.LoadBot()
	if err != nil {
		return err
	}
	st, err := state.Load(cfg.StatePath)
	if errors.Is(err, state.ErrCorrupt) {
		log.WithError(err).Warn("state file unreadable, showing defaults")
	} else if err != nil {
		return err
	}
	mem, err := openMemory(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if config.MongoClient != nil {
			_ = config.MongoClient.Disconnect(context.Background())
		}
	}()

	b := bot.New(nil, nil, mem, st, bot.Options{Config: cfg, Log: log})
	return b.Status(cmd.Context(), cmd.OutOrStdout())
}
