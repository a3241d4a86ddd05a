package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// legacyTime decodes the timestamps older releases wrote: epoch milliseconds
// for cursors, ISO strings for dates. Zero and null mean "never".
type legacyTime time.Time

func (t *legacyTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err == nil {
		if ms > 0 {
			*t = legacyTime(time.UnixMilli(int64(ms)).UTC())
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	*t = legacyTime(parsed.UTC())
	return nil
}

// legacyState is the unversioned layout. JSON null leaves the Go default in
// place, which is the same as a missing key.
type legacyState struct {
	LastPost            legacyTime `json:"lastPost"`
	PostCount           int        `json:"postCount"`
	DailyPostCount      int        `json:"dailyPostCount"`
	DailyDate           string     `json:"dailyDate"`
	LastReplyCheck      legacyTime `json:"lastReplyCheck"`
	LastMentionID       string     `json:"lastMentionId"`
	LastFollowCheck     legacyTime `json:"lastFollowCheck"`
	LastBioUpdate       legacyTime `json:"lastBioUpdate"`
	LastEngageCheck     legacyTime `json:"lastEngageCheck"`
	LastInfluencerCheck legacyTime `json:"lastInfluencerCheck"`
	FollowedUsers       []string   `json:"followedUsers"`
	EngagedTweets       []string   `json:"engagedTweets"`
	TotalTweets         int        `json:"totalTweets"`
	TotalReplies        int        `json:"totalReplies"`
	TotalFollows        int        `json:"totalFollows"`
	TotalRetweets       int        `json:"totalRetweets"`
	TokenDeployed       bool       `json:"tokenDeployed"`
	TokenName           string     `json:"tokenName"`
	TokenTicker         string     `json:"tokenTicker"`
	TokenDeployDate     legacyTime `json:"tokenDeployDate"`
	DeployCheckCount    int        `json:"deployCheckCount"`
	BotStartDate        legacyTime `json:"botStartDate"`
	PinnedTweetID       string     `json:"pinnedTweetId"`
	IntroPosted         bool       `json:"introPosted"`
}

func migrateLegacy(raw []byte) (*State, error) {
	var old legacyState
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, err
	}
	s := &State{
		Version:             CurrentVersion,
		LastPost:            time.Time(old.LastPost),
		PostCount:           old.PostCount,
		DailyPostCount:      old.DailyPostCount,
		DailyDate:           old.DailyDate,
		LastReplyCheck:      time.Time(old.LastReplyCheck),
		LastMentionID:       old.LastMentionID,
		LastFollowCheck:     time.Time(old.LastFollowCheck),
		LastBioUpdate:       time.Time(old.LastBioUpdate),
		LastEngageCheck:     time.Time(old.LastEngageCheck),
		LastInfluencerCheck: time.Time(old.LastInfluencerCheck),
		FollowedUsers:       old.FollowedUsers,
		EngagedTweets:       old.EngagedTweets,
		TotalTweets:         old.TotalTweets,
		TotalReplies:        old.TotalReplies,
		TotalFollows:        old.TotalFollows,
		TotalRetweets:       old.TotalRetweets,
		TokenDeployed:       old.TokenDeployed,
		TokenName:           old.TokenName,
		TokenTicker:         old.TokenTicker,
		TokenDeployDate:     time.Time(old.TokenDeployDate),
		DeployCheckCount:    old.DeployCheckCount,
		BotStartDate:        time.Time(old.BotStartDate),
		PinnedTweetID:       old.PinnedTweetID,
		IntroPosted:         old.IntroPosted,
	}
	return s, nil
}
