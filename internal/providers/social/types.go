package social

import "time"

type PublicMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
}

type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	Verified      bool          `json:"verified"`
	VerifiedType  string        `json:"verified_type"`
	PublicMetrics PublicMetrics `json:"public_metrics"`
}

// IsPremium reports a legacy verified or paid (blue) account.
func (u *User) IsPremium() bool {
	return u != nil && (u.Verified || u.VerifiedType == "blue")
}

func (u *User) Followers() int {
	if u == nil {
		return 0
	}
	return u.PublicMetrics.FollowersCount
}

type Tweet struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"author_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Author is filled from the author_id expansion when the endpoint has one.
	Author *User `json:"-"`
}

type includes struct {
	Users []User `json:"users"`
}

type tweetList struct {
	Data     []Tweet  `json:"data"`
	Includes includes `json:"includes"`
}

type userList struct {
	Data []User `json:"data"`
}

type userResp struct {
	Data *User `json:"data"`
}

type tweetResp struct {
	Data     *Tweet   `json:"data"`
	Includes includes `json:"includes"`
}

type createdResp struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
