// Package bot runs the autonomous X account: time-gated tasks over a shared
// state file, text from the language model, activity recorded in memory.
package bot

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/diero-hl/agentclaw/config"
	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/bot/state"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
	"github.com/diero-hl/agentclaw/internal/providers/social"
	"github.com/sirupsen/logrus"
)

// XClient is the part of the social client the bot drives.
type XClient interface {
	Me(ctx context.Context) (*social.User, error)
	Tweet(ctx context.Context, text string) (string, error)
	Reply(ctx context.Context, inReplyTo, text string) (string, error)
	Like(ctx context.Context, tweetID string) error
	Retweet(ctx context.Context, tweetID string) error
	Follow(ctx context.Context, userID string) error
	Bookmark(ctx context.Context, tweetID string) error
	PinTweet(ctx context.Context, tweetID string) error
	MentionTimeline(ctx context.Context, sinceID string) ([]social.Tweet, error)
	Followers(ctx context.Context) ([]social.User, error)
	Following(ctx context.Context) ([]social.User, error)
	User(ctx context.Context, id string) (*social.User, error)
	UserByUsername(ctx context.Context, username string) (*social.User, error)
	UserTimeline(ctx context.Context, userID string, max int) ([]social.Tweet, error)
	SingleTweet(ctx context.Context, id string) (*social.Tweet, error)
	Search(ctx context.Context, query string, max int) ([]social.Tweet, error)
	UpdateBio(ctx context.Context, bio string) error
	UpdateProfileImage(ctx context.Context, image []byte) error
	UpdateBanner(ctx context.Context, image []byte) error
}

type Options struct {
	Config config.BotConfig
	Soul   string
	Log    logrus.FieldLogger

	// Now, Rand and Sleep default to the wall clock, a time-seeded source and
	// a context-aware timer.
	Now   func() time.Time
	Rand  *rand.Rand
	Sleep func(ctx context.Context, d time.Duration) error
}

type Bot struct {
	x   XClient
	llm llm.Provider
	mem memory.Log
	st  *state.State

	cfg  config.BotConfig
	soul string
	log  logrus.FieldLogger

	now   func() time.Time
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error

	builders    []string
	influencers []string
	queries     []string
}

func New(x XClient, provider llm.Provider, mem memory.Log, st *state.State, opts Options) *Bot {
	b := &Bot{
		x:           x,
		llm:         provider,
		mem:         mem,
		st:          st,
		cfg:         opts.Config,
		soul:        opts.Soul,
		log:         opts.Log,
		now:         opts.Now,
		rnd:         opts.Rand,
		sleep:       opts.Sleep,
		builders:    orDefault(opts.Config.Targets.Builders, DefaultBuilders),
		influencers: orDefault(opts.Config.Targets.Influencers, DefaultInfluencers),
		queries:     orDefault(opts.Config.Targets.SearchQueries, DefaultSearchQueries),
	}
	if b.soul == "" {
		b.soul = FallbackSoul
	}
	if b.log == nil {
		b.log = logrus.StandardLogger()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.rnd == nil {
		b.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.sleep == nil {
		b.sleep = sleepCtx
	}
	if b.st == nil {
		b.st = state.Default()
	}
	return b
}

// State exposes the live state, mainly for status output.
func (b *Bot) State() *state.State { return b.st }

// LoadSoul reads the persona from path, then from the parent directory, and
// falls back to the built-in persona.
func LoadSoul(path string) string {
	candidates := []string{path, filepath.Join(filepath.Dir(path), "..", filepath.Base(path))}
	for _, p := range candidates {
		raw, err := os.ReadFile(p)
		if err == nil && len(raw) > 0 {
			return string(raw)
		}
	}
	return FallbackSoul
}

func (b *Bot) save() error {
	if b.cfg.StatePath == "" {
		return nil
	}
	return b.st.Save(b.cfg.StatePath)
}

func (b *Bot) statusURL(id string) string {
	return "https://x.com/" + b.cfg.Handle + "/status/" + id
}

// pause waits a random duration in [min, max).
func (b *Bot) pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(b.rnd.Int63n(int64(max - min)))
	}
	return b.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func orDefault(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}
