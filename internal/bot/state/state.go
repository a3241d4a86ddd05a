// Package state holds the bot's persisted counters, cursors and bounded
// history. The file is versioned; unversioned files from older releases are
// migrated on load.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const CurrentVersion = 1

const (
	maxTracked  = 500
	keepTracked = 300
)

// ErrCorrupt is returned together with default state when the file exists
// but cannot be decoded.
var ErrCorrupt = errors.New("state file is corrupt")

type State struct {
	Version int `json:"version"`

	LastPost       time.Time `json:"lastPost"`
	PostCount      int       `json:"postCount"`
	DailyPostCount int       `json:"dailyPostCount"`
	DailyDate      string    `json:"dailyDate"`

	LastReplyCheck      time.Time `json:"lastReplyCheck"`
	LastMentionID       string    `json:"lastMentionId"`
	LastFollowCheck     time.Time `json:"lastFollowCheck"`
	LastBioUpdate       time.Time `json:"lastBioUpdate"`
	LastEngageCheck     time.Time `json:"lastEngageCheck"`
	LastInfluencerCheck time.Time `json:"lastInfluencerCheck"`

	FollowedUsers []string `json:"followedUsers"`
	EngagedTweets []string `json:"engagedTweets"`

	TotalTweets   int `json:"totalTweets"`
	TotalReplies  int `json:"totalReplies"`
	TotalFollows  int `json:"totalFollows"`
	TotalRetweets int `json:"totalRetweets"`

	TokenDeployed    bool      `json:"tokenDeployed"`
	TokenName        string    `json:"tokenName"`
	TokenTicker      string    `json:"tokenTicker"`
	TokenDeployDate  time.Time `json:"tokenDeployDate"`
	DeployCheckCount int       `json:"deployCheckCount"`

	BotStartDate  time.Time `json:"botStartDate"`
	PinnedTweetID string    `json:"pinnedTweetId"`
	IntroPosted   bool      `json:"introPosted"`
}

func Default() *State {
	return &State{
		Version:       CurrentVersion,
		FollowedUsers: []string{},
		EngagedTweets: []string{},
	}
}

// Load reads the state file. A missing file yields defaults. A corrupt file
// yields defaults and an error wrapping ErrCorrupt so the caller can warn and
// continue.
func Load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var s *State
	switch {
	case probe.Version == nil:
		s, err = migrateLegacy(raw)
	case *probe.Version == CurrentVersion:
		s = Default()
		err = json.Unmarshal(raw, s)
	default:
		return Default(), fmt.Errorf("%w: unknown version %d", ErrCorrupt, *probe.Version)
	}
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s.normalize()
	return s, nil
}

// Save writes the state atomically: a temp file in the same directory is
// written, synced and renamed over the target.
func (s *State) Save(path string) error {
	s.Version = CurrentVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (s *State) normalize() {
	s.Version = CurrentVersion
	if s.FollowedUsers == nil {
		s.FollowedUsers = []string{}
	}
	if s.EngagedTweets == nil {
		s.EngagedTweets = []string{}
	}
}

// ResetDaily zeroes the daily post counter when the UTC date changed.
func (s *State) ResetDaily(now time.Time) {
	today := now.UTC().Format(time.DateOnly)
	if s.DailyDate != today {
		s.DailyDate = today
		s.DailyPostCount = 0
	}
}

func (s *State) HasEngaged(tweetID string) bool {
	return contains(s.EngagedTweets, tweetID)
}

func (s *State) MarkEngaged(tweetID string) {
	s.EngagedTweets = appendCapped(s.EngagedTweets, tweetID)
}

func (s *State) HasFollowed(userID string) bool {
	return contains(s.FollowedUsers, userID)
}

func (s *State) MarkFollowed(userID string) {
	if s.HasFollowed(userID) {
		return
	}
	s.FollowedUsers = appendCapped(s.FollowedUsers, userID)
}

// AdvanceMention moves the mention cursor forward; older ids are ignored.
func (s *State) AdvanceMention(id string) {
	if idGreater(id, s.LastMentionID) {
		s.LastMentionID = id
	}
}

// DaysRunning counts whole days since the bot first started.
func (s *State) DaysRunning(now time.Time) int {
	if s.BotStartDate.IsZero() {
		return 0
	}
	return int(now.Sub(s.BotStartDate) / (24 * time.Hour))
}

func appendCapped(list []string, v string) []string {
	list = append(list, v)
	if len(list) > maxTracked {
		list = append([]string(nil), list[len(list)-keepTracked:]...)
	}
	return list
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// idGreater compares numeric snowflake ids without parsing them.
func idGreater(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}
