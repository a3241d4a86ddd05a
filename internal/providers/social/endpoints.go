package social

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const (
	userFields  = "public_metrics,verified,verified_type"
	tweetFields = "created_at,author_id,text,conversation_id,public_metrics"
)

// SearchSuffix keeps searches to original English tweets.
const SearchSuffix = " -is:retweet lang:en"

// Me returns the authenticated account. The first success is cached.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.mu.Lock()
	if c.me != nil {
		defer c.mu.Unlock()
		return c.me, nil
	}
	c.mu.Unlock()

	var resp userResp
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/users/me"}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.New("x api: empty /users/me response")
	}

	c.mu.Lock()
	c.me = resp.Data
	c.mu.Unlock()
	return resp.Data, nil
}

func (c *Client) Tweet(ctx context.Context, text string) (string, error) {
	return c.createTweet(ctx, map[string]any{"text": text})
}

func (c *Client) Reply(ctx context.Context, inReplyTo, text string) (string, error) {
	return c.createTweet(ctx, map[string]any{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": inReplyTo},
	})
}

func (c *Client) createTweet(ctx context.Context, payload map[string]any) (string, error) {
	var resp createdResp
	if err := c.do(ctx, request{method: http.MethodPost, path: "/2/tweets", json: payload}, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", errors.New("x api: tweet created without id")
	}
	return resp.Data.ID, nil
}

func (c *Client) Like(ctx context.Context, tweetID string) error {
	return c.selfAction(ctx, "/likes", map[string]string{"tweet_id": tweetID})
}

func (c *Client) Retweet(ctx context.Context, tweetID string) error {
	return c.selfAction(ctx, "/retweets", map[string]string{"tweet_id": tweetID})
}

func (c *Client) Follow(ctx context.Context, userID string) error {
	return c.selfAction(ctx, "/following", map[string]string{"target_user_id": userID})
}

func (c *Client) Bookmark(ctx context.Context, tweetID string) error {
	return c.selfAction(ctx, "/bookmarks", map[string]string{"tweet_id": tweetID})
}

func (c *Client) selfAction(ctx context.Context, suffix string, payload any) error {
	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/2/users/" + me.ID + suffix, json: payload}, nil)
}

// MentionTimeline lists up to ten mentions of the account newer than sinceID.
func (c *Client) MentionTimeline(ctx context.Context, sinceID string) ([]Tweet, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	q := url.Values{"max_results": {"10"}, "tweet.fields": {tweetFields}}
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	var resp tweetList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/users/" + me.ID + "/mentions", query: q}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Followers(ctx context.Context) ([]User, error) {
	return c.relations(ctx, "/followers")
}

func (c *Client) Following(ctx context.Context) ([]User, error) {
	return c.relations(ctx, "/following")
}

func (c *Client) relations(ctx context.Context, suffix string) ([]User, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	var resp userList
	q := url.Values{"max_results": {"100"}}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/users/" + me.ID + suffix, query: q}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) User(ctx context.Context, id string) (*User, error) {
	return c.user(ctx, "/2/users/"+url.PathEscape(id))
}

func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	return c.user(ctx, "/2/users/by/username/"+url.PathEscape(username))
}

func (c *Client) user(ctx context.Context, path string) (*User, error) {
	var resp userResp
	q := url.Values{"user.fields": {userFields}}
	if err := c.do(ctx, request{method: http.MethodGet, path: path, query: q}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &APIError{Status: http.StatusNotFound, Body: "user not found"}
	}
	return resp.Data, nil
}

// UserTimeline returns up to max recent original tweets of a user.
func (c *Client) UserTimeline(ctx context.Context, userID string, max int) ([]Tweet, error) {
	q := url.Values{
		"max_results":  {strconv.Itoa(max)},
		"tweet.fields": {"created_at,text,public_metrics"},
		"exclude":      {"retweets"},
	}
	var resp tweetList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/users/" + url.PathEscape(userID) + "/tweets", query: q}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SingleTweet fetches one tweet with its author attached.
func (c *Client) SingleTweet(ctx context.Context, id string) (*Tweet, error) {
	q := url.Values{"tweet.fields": {"text,author_id"}, "expansions": {"author_id"}, "user.fields": {userFields}}
	var resp tweetResp
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/tweets/" + url.PathEscape(id), query: q}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &APIError{Status: http.StatusNotFound, Body: "tweet not found"}
	}
	if len(resp.Includes.Users) > 0 {
		u := resp.Includes.Users[0]
		resp.Data.Author = &u
	}
	return resp.Data, nil
}

// Search runs a recent search sorted by relevancy; authors are attached.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Tweet, error) {
	if max < 10 {
		max = 10
	}
	q := url.Values{
		"query":        {query + SearchSuffix},
		"max_results":  {strconv.Itoa(max)},
		"tweet.fields": {tweetFields},
		"expansions":   {"author_id"},
		"user.fields":  {userFields},
		"sort_order":   {"relevancy"},
	}
	var resp tweetList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/2/tweets/search/recent", query: q}, &resp); err != nil {
		return nil, err
	}

	users := make(map[string]*User, len(resp.Includes.Users))
	for i := range resp.Includes.Users {
		users[resp.Includes.Users[i].ID] = &resp.Includes.Users[i]
	}
	for i := range resp.Data {
		resp.Data[i].Author = users[resp.Data[i].AuthorID]
	}
	return resp.Data, nil
}

func (c *Client) UpdateBio(ctx context.Context, bio string) error {
	return c.v1Form(ctx, "/1.1/account/update_profile.json", url.Values{"description": {bio}})
}

func (c *Client) UpdateProfileImage(ctx context.Context, image []byte) error {
	return c.v1Form(ctx, "/1.1/account/update_profile_image.json", url.Values{
		"image": {base64.StdEncoding.EncodeToString(image)},
	})
}

func (c *Client) UpdateBanner(ctx context.Context, image []byte) error {
	return c.v1Form(ctx, "/1.1/account/update_profile_banner.json", url.Values{
		"banner": {base64.StdEncoding.EncodeToString(image)},
	})
}

// PinTweet uses the v1.1 pin endpoint, which not every API tier allows.
func (c *Client) PinTweet(ctx context.Context, tweetID string) error {
	return c.v1Form(ctx, "/1.1/statuses/pin.json", url.Values{"id": {tweetID}})
}

func (c *Client) v1Form(ctx context.Context, path string, form url.Values) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, form: form}, nil)
}
