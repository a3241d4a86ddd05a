// Package memory is the bot's append-only activity log. Recent tweets are fed
// back into generation so the bot does not repeat itself.
package memory

import (
	"context"
	"time"
)

const (
	TypeTweet       = "tweet"
	TypeReply       = "reply"
	TypeLike        = "like"
	TypeRetweet     = "retweet"
	TypeFollow      = "follow"
	TypePin         = "pin"
	TypeBio         = "bio_update"
	TypePFP         = "pfp_update"
	TypeBanner      = "banner_update"
	TypeTokenDeploy = "token_deploy"
)

type Entry struct {
	Type      string    `json:"type" bson:"type"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	TweetID   string    `json:"tweetId,omitempty" bson:"tweet_id,omitempty"`
	InReplyTo string    `json:"inReplyTo,omitempty" bson:"in_reply_to,omitempty"`
	UserID    string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	Path      string    `json:"path,omitempty" bson:"path,omitempty"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Ticker    string    `json:"ticker,omitempty" bson:"ticker,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type Log interface {
	Append(ctx context.Context, e Entry) error
	// Recent returns up to n newest entries, oldest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// RecentOfType filters the last window entries down to one type.
func RecentOfType(ctx context.Context, l Log, typ string, window int) ([]Entry, error) {
	all, err := l.Recent(ctx, window)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}
