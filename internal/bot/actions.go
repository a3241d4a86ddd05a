package bot

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/logger"
)

// The action wrappers below log failures and report them as "" or false so a
// task can move on to its next item.

func (b *Bot) postTweet(ctx context.Context, text string) string {
	log := logger.Task(b.log, "tweet")
	text = capLength(text)
	log.WithField("chars", utf8.RuneCountInString(text)).Infof("posting: %s", oneLine(text, 120))

	id, err := b.x.Tweet(ctx, text)
	if err != nil {
		log.WithError(err).Warn("post failed")
		return ""
	}
	b.remember(ctx, memory.Entry{Type: memory.TypeTweet, Content: text, TweetID: id})
	return id
}

func (b *Bot) replyTo(ctx context.Context, tweetID, text string) string {
	log := logger.Task(b.log, "reply").WithField("in_reply_to", tweetID)
	log.WithField("chars", utf8.RuneCountInString(text)).Info("replying")

	id, err := b.x.Reply(ctx, tweetID, text)
	if err != nil {
		log.WithError(err).Warn("reply failed")
		return ""
	}
	b.remember(ctx, memory.Entry{Type: memory.TypeReply, InReplyTo: tweetID, Content: text, TweetID: id})
	return id
}

func (b *Bot) like(ctx context.Context, tweetID string) bool {
	if err := b.x.Like(ctx, tweetID); err != nil {
		logger.Task(b.log, "like").WithError(err).WithField("tweet_id", tweetID).Warn("like failed")
		return false
	}
	b.remember(ctx, memory.Entry{Type: memory.TypeLike, TweetID: tweetID})
	return true
}

func (b *Bot) retweet(ctx context.Context, tweetID string) bool {
	if err := b.x.Retweet(ctx, tweetID); err != nil {
		logger.Task(b.log, "retweet").WithError(err).WithField("tweet_id", tweetID).Warn("retweet failed")
		return false
	}
	b.remember(ctx, memory.Entry{Type: memory.TypeRetweet, TweetID: tweetID})
	return true
}

func (b *Bot) follow(ctx context.Context, userID string) bool {
	log := logger.Task(b.log, "follow").WithField("user_id", userID)
	if err := b.x.Follow(ctx, userID); err != nil {
		log.WithError(err).Warn("follow failed")
		return false
	}
	log.Info("followed")
	b.st.MarkFollowed(userID)
	b.remember(ctx, memory.Entry{Type: memory.TypeFollow, UserID: userID})
	return true
}

// pin falls back to a bookmark when the API tier has no pin endpoint.
func (b *Bot) pin(ctx context.Context, tweetID string) bool {
	log := logger.Task(b.log, "pin").WithField("tweet_id", tweetID)
	err := b.x.PinTweet(ctx, tweetID)
	if err == nil {
		log.Info("pinned")
		b.remember(ctx, memory.Entry{Type: memory.TypePin, TweetID: tweetID})
		return true
	}
	log.WithError(err).Warn("pin not available")

	if err := b.x.Bookmark(ctx, tweetID); err == nil {
		log.Info("bookmarked as fallback")
	}
	log.Infof("pin manually: %s", b.statusURL(tweetID))
	return false
}

func (b *Bot) updateBio(ctx context.Context, bio string) bool {
	log := logger.Task(b.log, "bio")
	if err := b.x.UpdateBio(ctx, bio); err != nil {
		log.WithError(err).Warn("bio update failed")
		return false
	}
	log.Infof("bio updated: %s", bio)
	b.remember(ctx, memory.Entry{Type: memory.TypeBio, Content: bio})
	return true
}

func (b *Bot) uploadImage(ctx context.Context, path, kind string) bool {
	log := logger.Task(b.log, "profile").WithField("path", path)
	img, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Warnf("%s not readable", kind)
		return false
	}

	entryType := memory.TypePFP
	upload := b.x.UpdateProfileImage
	if kind == "banner" {
		entryType = memory.TypeBanner
		upload = b.x.UpdateBanner
	}
	if err := upload(ctx, img); err != nil {
		log.WithError(err).Warnf("%s upload failed", kind)
		return false
	}
	log.WithField("kb", len(img)/1024).Infof("%s updated", kind)
	b.remember(ctx, memory.Entry{Type: entryType, Path: path})
	return true
}

func (b *Bot) remember(ctx context.Context, e memory.Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now().UTC()
	}
	if err := b.mem.Append(ctx, e); err != nil {
		b.log.WithError(err).WithField("type", e.Type).Warn("memory append failed")
	}
}
