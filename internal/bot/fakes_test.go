package bot

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/config"
	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/bot/state"
	"github.com/diero-hl/agentclaw/internal/providers/llm/llmtest"
	"github.com/diero-hl/agentclaw/internal/providers/social"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errX = errors.New("x api down")

type fakeX struct {
	mu sync.Mutex

	me          *social.User
	users       map[string]*social.User
	byName      map[string]*social.User
	mentions    []social.Tweet
	followers   []social.User
	following   []social.User
	timelines   map[string][]social.Tweet
	search      map[string][]social.Tweet
	single      *social.Tweet
	tweetErr    error
	replyErr    error
	pinErr      error
	followErr   error
	mentionsErr error

	nextID    int
	tweets    []string
	replies   map[string]string
	likes     []string
	retweets  []string
	follows   []string
	bookmarks []string
	pins      []string
	bios      []string
	images    int
	banners   int
	sinceIDs  []string
	queries   []string
}

func newFakeX() *fakeX {
	return &fakeX{
		me:        &social.User{ID: "me", Username: "AgentClaw_"},
		users:     map[string]*social.User{},
		byName:    map[string]*social.User{},
		timelines: map[string][]social.Tweet{},
		search:    map[string][]social.Tweet{},
		replies:   map[string]string{},
		nextID:    1000,
	}
}

func (f *fakeX) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeX) Me(context.Context) (*social.User, error) { return f.me, nil }

func (f *fakeX) Tweet(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tweetErr != nil {
		return "", f.tweetErr
	}
	f.tweets = append(f.tweets, text)
	return f.id(), nil
}

func (f *fakeX) Reply(_ context.Context, to, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return "", f.replyErr
	}
	f.replies[to] = text
	return f.id(), nil
}

func (f *fakeX) Like(_ context.Context, id string) error {
	f.likes = append(f.likes, id)
	return nil
}

func (f *fakeX) Retweet(_ context.Context, id string) error {
	f.retweets = append(f.retweets, id)
	return nil
}

func (f *fakeX) Follow(_ context.Context, id string) error {
	if f.followErr != nil {
		return f.followErr
	}
	f.follows = append(f.follows, id)
	return nil
}

func (f *fakeX) Bookmark(_ context.Context, id string) error {
	f.bookmarks = append(f.bookmarks, id)
	return nil
}

func (f *fakeX) PinTweet(_ context.Context, id string) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pins = append(f.pins, id)
	return nil
}

func (f *fakeX) MentionTimeline(_ context.Context, since string) ([]social.Tweet, error) {
	f.sinceIDs = append(f.sinceIDs, since)
	return f.mentions, f.mentionsErr
}

func (f *fakeX) Followers(context.Context) ([]social.User, error) { return f.followers, nil }
func (f *fakeX) Following(context.Context) ([]social.User, error) { return f.following, nil }

func (f *fakeX) User(_ context.Context, id string) (*social.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, &social.APIError{Status: 404, Body: "not found"}
}

func (f *fakeX) UserByUsername(_ context.Context, name string) (*social.User, error) {
	if u, ok := f.byName[name]; ok {
		return u, nil
	}
	return nil, &social.APIError{Status: 404, Body: "not found"}
}

func (f *fakeX) UserTimeline(_ context.Context, id string, _ int) ([]social.Tweet, error) {
	return f.timelines[id], nil
}

func (f *fakeX) SingleTweet(context.Context, string) (*social.Tweet, error) {
	if f.single == nil {
		return nil, &social.APIError{Status: 404, Body: "not found"}
	}
	return f.single, nil
}

func (f *fakeX) Search(_ context.Context, q string, _ int) ([]social.Tweet, error) {
	f.queries = append(f.queries, q)
	return f.search[q], nil
}

func (f *fakeX) UpdateBio(_ context.Context, bio string) error {
	f.bios = append(f.bios, bio)
	return nil
}

func (f *fakeX) UpdateProfileImage(context.Context, []byte) error { f.images++; return nil }
func (f *fakeX) UpdateBanner(context.Context, []byte) error       { f.banners++; return nil }

type harness struct {
	bot   *Bot
	x     *fakeX
	llm   *llmtest.Fake
	mem   *memory.FileLog
	st    *state.State
	hook  *test.Hook
	now   time.Time
	slept []time.Duration
	cfg   config.BotConfig
}

// newHarness builds a bot at 12:00 in the posting timezone with no-op sleeps.
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultBotConfig()
	cfg.StatePath = filepath.Join(dir, "bot-state.json")
	cfg.AssetsDir = filepath.Join(dir, "assets")

	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	h := &harness{
		x:    newFakeX(),
		llm:  &llmtest.Fake{},
		mem:  memory.NewFileLog(filepath.Join(dir, "memory.jsonl"), 0, 0),
		st:   state.Default(),
		hook: hook,
		now:  time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC),
		cfg:  cfg,
	}
	h.bot = New(h.x, h.llm, h.mem, h.st, Options{
		Config: cfg,
		Soul:   "You are a test persona.",
		Log:    l,
		Now:    func() time.Time { return h.now },
		Rand:   rand.New(rand.NewSource(1)),
		Sleep: func(ctx context.Context, d time.Duration) error {
			h.slept = append(h.slept, d)
			return ctx.Err()
		},
	})
	return h
}

func premium(id string, followers int) *social.User {
	return &social.User{ID: id, Username: "user_" + id, VerifiedType: "blue", PublicMetrics: social.PublicMetrics{FollowersCount: followers}}
}
