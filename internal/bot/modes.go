package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/logger"
)

var (
	ErrNothingGenerated = errors.New("model returned no text")
	ErrNotPosted        = errors.New("tweet was not posted")
)

// TweetOnce posts one tweet on topic, or on a random topic when empty.
func (b *Bot) TweetOnce(ctx context.Context, topic string) (string, error) {
	if topic == "" {
		topic = PostTopics[b.rnd.Intn(len(PostTopics))]
	}
	text := b.generate(ctx, topic, "")
	if text == "" {
		return "", ErrNothingGenerated
	}
	id := b.postTweet(ctx, text)
	if id == "" {
		return "", ErrNotPosted
	}
	b.countStandalonePost()
	b.st.PostCount++
	logger.Task(b.log, "tweet").Info(b.statusURL(id))
	return id, b.save()
}

// Survival posts the fixed origin story tweet.
func (b *Bot) Survival(ctx context.Context) (string, error) {
	id := b.postTweet(ctx, SurvivalTweet)
	if id == "" {
		return "", ErrNotPosted
	}
	b.countStandalonePost()
	logger.Task(b.log, "survival").Info(b.statusURL(id))
	return id, b.save()
}

func (b *Bot) countStandalonePost() {
	now := b.now()
	b.st.LastPost = now
	b.st.TotalTweets++
	b.st.ResetDaily(now)
	b.st.DailyPostCount++
}

// RunTaskNow clears one task's cursor and runs it immediately.
func (b *Bot) RunTaskNow(ctx context.Context, name string) error {
	switch name {
	case "reply":
		b.st.LastReplyCheck = time.Time{}
		return b.TaskReply(ctx)
	case "follow":
		b.st.LastFollowCheck = time.Time{}
		return b.TaskFollowBack(ctx)
	case "bio":
		b.st.LastBioUpdate = time.Time{}
		return b.TaskBio(ctx)
	case "engage":
		b.st.LastEngageCheck = time.Time{}
		return b.TaskEngage(ctx)
	case "influencer":
		b.st.LastInfluencerCheck = time.Time{}
		return b.TaskInfluencers(ctx)
	}
	return fmt.Errorf("unknown task %q", name)
}

// Intro posts the three tweet introduction thread and pins its head.
func (b *Bot) Intro(ctx context.Context) (string, error) {
	log := logger.Task(b.log, "intro")

	first := b.generate(ctx, intro1Prompt, intro1Extra)
	if first == "" {
		return "", ErrNothingGenerated
	}
	headID := b.postTweet(ctx, first)
	if headID == "" {
		return "", ErrNotPosted
	}
	log.Infof("intro posted: %s", b.statusURL(headID))

	if err := b.sleep(ctx, 3*time.Second); err != nil {
		return headID, err
	}
	if second := b.generate(ctx, intro2Prompt, intro2Extra); second != "" {
		if id := b.replyTo(ctx, headID, second); id != "" {
			log.Infof("thread reply 2: %s", id)
		}
		if err := b.sleep(ctx, 3*time.Second); err != nil {
			return headID, err
		}
	}
	if third := b.generate(ctx, intro3Prompt, intro3Extra); third != "" {
		if id := b.replyTo(ctx, headID, third); id != "" {
			log.Infof("thread reply 3: %s", id)
		}
	}

	b.pin(ctx, headID)

	b.st.TotalTweets += 3
	b.st.PinnedTweetID = headID
	b.st.IntroPosted = true
	return headID, b.save()
}

// Profile uploads assets/pfp.png and assets/banner.png when present.
func (b *Bot) Profile(ctx context.Context) {
	log := logger.Task(b.log, "profile")
	for _, a := range []struct{ file, kind string }{{"pfp.png", "pfp"}, {"banner.png", "banner"}} {
		path := filepath.Join(b.cfg.AssetsDir, a.file)
		if _, err := os.Stat(path); err != nil {
			log.Warnf("%s not found at %s", a.kind, path)
			continue
		}
		b.uploadImage(ctx, path, a.kind)
	}
}

var statusIDRe = regexp.MustCompile(`status/(\d+)`)

// ParseTweetID accepts a status URL or a bare id.
func ParseTweetID(input string) string {
	if m := statusIDRe.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// ReplyTo answers one specific tweet and likes it.
func (b *Bot) ReplyTo(ctx context.Context, input string) (string, error) {
	log := logger.Task(b.log, "reply-to")
	tweetID := ParseTweetID(input)

	tweet, err := b.x.SingleTweet(ctx, tweetID)
	if err != nil {
		return "", fmt.Errorf("fetch tweet %s: %w", tweetID, err)
	}
	author := "unknown"
	if tweet.Author != nil && tweet.Author.Username != "" {
		author = tweet.Author.Username
	}
	log.Infof("@%s: %s", author, oneLine(tweet.Text, 200))

	text := b.complete(ctx, replyToSystem(b.soul, author), replyToPrompt(author, tweet.Text))
	if text == "" {
		return "", ErrNothingGenerated
	}
	id := b.replyTo(ctx, tweetID, text)
	if id == "" {
		return "", ErrNotPosted
	}
	log.Infof("posted: %s", b.statusURL(id))
	b.like(ctx, tweetID)
	return id, nil
}

// Status prints counters, cursors and the latest activity.
func (b *Bot) Status(ctx context.Context, w io.Writer) error {
	st := b.st
	st.ResetDaily(b.now())

	fmt.Fprintln(w, "--- Agentclaw Status ---")
	fmt.Fprintf(w, "Total tweets:    %d\n", st.TotalTweets)
	fmt.Fprintf(w, "Total replies:   %d\n", st.TotalReplies)
	fmt.Fprintf(w, "Total retweets:  %d\n", st.TotalRetweets)
	fmt.Fprintf(w, "Total follows:   %d\n", st.TotalFollows)
	fmt.Fprintf(w, "Today's posts:   %d/%d\n", st.DailyPostCount, b.cfg.Schedule.PostsPerDay)
	fmt.Fprintf(w, "Last post:       %s\n", stamp(st.LastPost))
	fmt.Fprintf(w, "Last reply chk:  %s\n", stamp(st.LastReplyCheck))
	fmt.Fprintf(w, "Last bio update: %s\n", stamp(st.LastBioUpdate))
	fmt.Fprintf(w, "Last follow chk: %s\n", stamp(st.LastFollowCheck))
	if st.TokenDeployed {
		fmt.Fprintf(w, "Token:           %s %s (%s)\n", st.TokenName, st.TokenTicker, stamp(st.TokenDeployDate))
	} else {
		fmt.Fprintln(w, "Token:           not deployed")
	}

	recent, err := b.mem.Recent(ctx, 5)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Fprintln(w, "\n--- Recent Activity ---")
		for _, e := range recent {
			fmt.Fprintf(w, "  [%s] %s\n", e.Type, oneLine(entrySummary(e), 80))
		}
	}
	return nil
}

func entrySummary(e memory.Entry) string {
	switch {
	case e.Content != "":
		return e.Content
	case e.TweetID != "":
		return e.TweetID
	case e.UserID != "":
		return e.UserID
	case e.Name != "":
		return e.Name + " $" + e.Ticker
	}
	return e.Path
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
