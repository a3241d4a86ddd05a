package bot

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/bot/state"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
	"github.com/diero-hl/agentclaw/internal/providers/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPostPublishes(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{"Base is cooking today."}

	require.NoError(t, h.bot.TaskPost(context.Background()))

	require.Equal(t, []string{"Base is cooking today."}, h.x.tweets)
	assert.Equal(t, 1, h.st.TotalTweets)
	assert.Equal(t, 1, h.st.DailyPostCount)
	assert.Equal(t, 1, h.st.PostCount)
	assert.Equal(t, h.now, h.st.LastPost)
	assert.Equal(t, "2026-10-16", h.st.DailyDate)

	saved, err := state.Load(h.cfg.StatePath)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.TotalTweets)

	recent, err := h.mem.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, memory.TypeTweet, recent[0].Type)
}

func TestTaskPostGates(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness)
	}{
		{"before start hour", func(h *harness) { h.now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }},
		{"daily limit", func(h *harness) {
			h.st.DailyDate = "2026-10-16"
			h.st.DailyPostCount = 6
		}},
		{"too soon", func(h *harness) { h.st.LastPost = h.now.Add(-90 * time.Minute) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.llm.Replies = []string{"should not post"}
			tc.setup(h)

			require.NoError(t, h.bot.TaskPost(context.Background()))
			assert.Empty(t, h.x.tweets)
			assert.Empty(t, h.llm.Calls())
		})
	}
}

func TestTaskPostAllowsAfterEightyPercentOfInterval(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{"posting again"}
	// window 15h / 6 posts = 2h30m; 80% is 2h
	h.st.LastPost = h.now.Add(-2*time.Hour - time.Minute)

	require.NoError(t, h.bot.TaskPost(context.Background()))
	assert.Len(t, h.x.tweets, 1)
}

func TestTaskReply(t *testing.T) {
	h := newHarness(t)
	h.st.LastMentionID = "100"
	h.x.users["good"] = premium("good", 150)
	h.x.users["small"] = premium("small", 50)
	h.x.users["free"] = &social.User{ID: "free", PublicMetrics: social.PublicMetrics{FollowersCount: 10000}}
	h.x.mentions = []social.Tweet{
		{ID: "105", AuthorID: "good", Text: "@AgentClaw_ what's hot on Base?"},
		{ID: "104", AuthorID: "small", Text: "@AgentClaw_ hi"},
		{ID: "103", AuthorID: "free", Text: "@AgentClaw_ hey"},
		{ID: "102", AuthorID: "ghost", Text: "@AgentClaw_ boo"},
	}
	h.llm.Replies = []string{"Aerodrome volume, obviously."}

	require.NoError(t, h.bot.TaskReply(context.Background()))

	assert.Equal(t, []string{"100"}, h.x.sinceIDs)
	assert.Equal(t, map[string]string{"105": "Aerodrome volume, obviously."}, h.x.replies)
	assert.Equal(t, []string{"105"}, h.x.likes)
	assert.Equal(t, "105", h.st.LastMentionID)
	assert.Equal(t, 1, h.st.TotalReplies)
	assert.Equal(t, h.now, h.st.LastReplyCheck)
	require.Len(t, h.slept, 1)
	assert.GreaterOrEqual(t, h.slept[0], 3*time.Second)
	assert.Less(t, h.slept[0], 8*time.Second)

	calls := h.llm.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, `Their message: "@AgentClaw_ what's hot on Base?"`)
}

func TestTaskReplyAdvancesCursorOnSkippedMentions(t *testing.T) {
	h := newHarness(t)
	h.x.users["small"] = premium("small", 10)
	h.x.mentions = []social.Tweet{{ID: "900", AuthorID: "small"}}

	require.NoError(t, h.bot.TaskReply(context.Background()))
	assert.Equal(t, "900", h.st.LastMentionID)
	assert.Empty(t, h.x.replies)
	assert.Empty(t, h.x.likes)
}

func TestTaskReplyRespectsInterval(t *testing.T) {
	h := newHarness(t)
	h.st.LastReplyCheck = h.now.Add(-4 * time.Minute)

	require.NoError(t, h.bot.TaskReply(context.Background()))
	assert.Empty(t, h.x.sinceIDs)
}

func TestTaskReplyCapsMentions(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 12; i++ {
		id := strconv.Itoa(200 + i)
		h.x.mentions = append(h.x.mentions, social.Tweet{ID: id, AuthorID: "u"})
	}
	h.x.users["u"] = premium("u", 500)
	h.llm.Replies = []string{"ok."}

	require.NoError(t, h.bot.TaskReply(context.Background()))
	assert.Len(t, h.x.replies, 8)
	assert.Equal(t, "207", h.st.LastMentionID)
}

func TestTaskFollowBack(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 20; i++ {
		h.x.followers = append(h.x.followers, social.User{ID: "f" + strconv.Itoa(i)})
	}
	h.x.following = []social.User{{ID: "f0"}, {ID: "f1"}}

	require.NoError(t, h.bot.TaskFollowBack(context.Background()))

	require.Len(t, h.x.follows, 15)
	assert.Equal(t, "f2", h.x.follows[0])
	assert.Equal(t, 15, h.st.TotalFollows)
	assert.True(t, h.st.HasFollowed("f2"))
	assert.Equal(t, h.now, h.st.LastFollowCheck)
}

func TestTaskFollowBackCountsOnlySuccess(t *testing.T) {
	h := newHarness(t)
	h.x.followers = []social.User{{ID: "a"}, {ID: "b"}}
	h.x.followErr = errX

	require.NoError(t, h.bot.TaskFollowBack(context.Background()))
	assert.Equal(t, 0, h.st.TotalFollows)
	assert.Empty(t, h.slept)
}

func TestTaskBio(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{"the claw never sleeps | OpenClaw"}

	require.NoError(t, h.bot.TaskBio(context.Background()))
	assert.Equal(t, []string{"the claw never sleeps | OpenClaw"}, h.x.bios)
	assert.Equal(t, h.now, h.st.LastBioUpdate)
}

func TestTaskBioFallsBackToTemplate(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{strings.Repeat("y", 161)}

	require.NoError(t, h.bot.TaskBio(context.Background()))
	require.Len(t, h.x.bios, 1)
	assert.Contains(t, BioTemplates, h.x.bios[0])
}

func TestTaskEngage(t *testing.T) {
	h := newHarness(t)
	h.bot.queries = []string{"Base chain", "onchain AI"}
	h.st.MarkEngaged("t-old")
	h.x.search["Base chain"] = []social.Tweet{
		{ID: "t-self", AuthorID: "me", Author: premium("me", 5000)},
		{ID: "t-old", AuthorID: "x1", Author: premium("x1", 5000)},
		{ID: "t-small", AuthorID: "x2", Author: premium("x2", 150)},
		{ID: "t-big", AuthorID: "x3", Author: premium("x3", 2500), Text: "Base TVL ATH"},
	}
	h.x.users["x4"] = premium("x4", 300)
	h.x.search["onchain AI"] = []social.Tweet{{ID: "t-mid", AuthorID: "x4", Text: "agents onchain"}}

	h.llm.Respond = func(req llm.Request) (string, error) {
		if strings.Contains(req.Messages[0].Content, "Should you retweet") {
			return "RT", nil
		}
		return "sharp take.", nil
	}

	require.NoError(t, h.bot.TaskEngage(context.Background()))

	assert.ElementsMatch(t, []string{"Base chain", "onchain AI"}, h.x.queries)
	assert.Len(t, h.x.replies, 2)
	assert.Contains(t, h.x.replies, "t-big")
	assert.Contains(t, h.x.replies, "t-mid")
	assert.Equal(t, []string{"t-big"}, h.x.retweets)
	assert.ElementsMatch(t, []string{"t-big", "t-mid"}, h.x.likes)
	assert.Equal(t, 2, h.st.TotalReplies)
	assert.Equal(t, 1, h.st.TotalRetweets)
	assert.True(t, h.st.HasEngaged("t-big"))
	assert.Equal(t, h.now, h.st.LastEngageCheck)
	for _, d := range h.slept {
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.Less(t, d, 20*time.Second)
	}
}

func TestTaskEngageStopsAtFive(t *testing.T) {
	h := newHarness(t)
	h.bot.queries = []string{"q1", "q2"}
	for _, q := range h.bot.queries {
		for i := 0; i < 4; i++ {
			id := q + "-" + strconv.Itoa(i)
			h.x.search[q] = append(h.x.search[q], social.Tweet{ID: id, AuthorID: id, Author: premium(id, 300)})
		}
	}
	h.llm.Replies = []string{"take."}

	require.NoError(t, h.bot.TaskEngage(context.Background()))
	assert.Len(t, h.x.replies, 5)
	assert.Equal(t, 5, h.st.TotalReplies)
}

func TestTaskInfluencers(t *testing.T) {
	h := newHarness(t)
	h.bot.builders = []string{"builder1"}
	h.bot.influencers = []string{"influencer1"}

	h.x.byName["builder1"] = premium("b1", 800)
	h.x.byName["influencer1"] = premium("i1", 90000)
	h.x.timelines["b1"] = []social.Tweet{
		{ID: "old", CreatedAt: h.now.Add(-30 * time.Hour)},
	}
	h.x.timelines["i1"] = []social.Tweet{
		{ID: "seen", CreatedAt: h.now.Add(-1 * time.Hour)},
		{ID: "fresh", CreatedAt: h.now.Add(-2 * time.Hour), Text: "Base summer is here"},
	}
	h.st.MarkEngaged("seen")

	var prompts []string
	h.llm.Respond = func(req llm.Request) (string, error) {
		prompts = append(prompts, req.Messages[0].Content)
		if strings.Contains(req.Messages[0].Content, "Should you retweet") {
			return "skip", nil
		}
		return "it really is.", nil
	}

	require.NoError(t, h.bot.TaskInfluencers(context.Background()))

	assert.ElementsMatch(t, []string{"b1", "i1"}, h.x.follows)
	assert.Equal(t, map[string]string{"fresh": "it really is."}, h.x.replies)
	assert.Equal(t, []string{"fresh"}, h.x.likes)
	assert.Empty(t, h.x.retweets)
	assert.True(t, h.st.HasEngaged("fresh"))
	assert.Equal(t, 1, h.st.TotalReplies)
	assert.Equal(t, h.now, h.st.LastInfluencerCheck)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "a major influencer in crypto/Base chain")
	assert.Contains(t, prompts[1], "(influencer)")
}

func TestTaskTokenDeployWaitsForTenthCheck(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{"DEPLOY"}

	for i := 0; i < 9; i++ {
		require.NoError(t, h.bot.TaskTokenDeploy(context.Background()))
	}
	assert.Equal(t, 9, h.st.DeployCheckCount)
	assert.Empty(t, h.llm.Calls())
}

func TestTaskTokenDeployWait(t *testing.T) {
	h := newHarness(t)
	h.st.DeployCheckCount = 9
	h.llm.Replies = []string{"WAIT"}

	require.NoError(t, h.bot.TaskTokenDeploy(context.Background()))
	assert.False(t, h.st.TokenDeployed)
	assert.Empty(t, h.x.tweets)
}

func TestTaskTokenDeploy(t *testing.T) {
	h := newHarness(t)
	h.st.DeployCheckCount = 19
	h.st.BotStartDate = h.now.Add(-72 * time.Hour)
	h.llm.Respond = func(req llm.Request) (string, error) {
		p := req.Messages[0].Content
		switch {
		case strings.Contains(p, "Reply with ONLY 'DEPLOY' or 'WAIT'"):
			assert.Contains(t, p, "Running 3.0 days")
			return "DEPLOY", nil
		case strings.Contains(p, "Choose your token name"):
			return "NAME: Pinch\nTICKER: pnch", nil
		case strings.Contains(p, "RIGHT NOW"):
			return "launching $PNCH now.", nil
		default:
			return "CA soon from Bankr.", nil
		}
	}

	require.NoError(t, h.bot.TaskTokenDeploy(context.Background()))

	assert.Equal(t, []string{
		"launching $PNCH now.",
		"@BankrBot deploy Pinch $PNCH on base",
		"CA soon from Bankr.",
	}, h.x.tweets)
	assert.True(t, h.st.TokenDeployed)
	assert.Equal(t, "Pinch", h.st.TokenName)
	assert.Equal(t, "$PNCH", h.st.TokenTicker)
	assert.Equal(t, h.now, h.st.TokenDeployDate)
	assert.Equal(t, 3, h.st.TotalTweets)
	assert.Contains(t, h.slept, 15*time.Second)

	recent, err := memory.RecentOfType(context.Background(), h.mem, memory.TypeTokenDeploy, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "PNCH", recent[0].Ticker)

	calls := len(h.llm.Calls())
	require.NoError(t, h.bot.TaskTokenDeploy(context.Background()))
	assert.Len(t, h.llm.Calls(), calls)
}

func TestTaskTokenDeployCommandFailure(t *testing.T) {
	h := newHarness(t)
	h.st.DeployCheckCount = 9
	h.llm.Replies = []string{"DEPLOY"}
	h.x.tweetErr = errX

	require.NoError(t, h.bot.TaskTokenDeploy(context.Background()))
	assert.False(t, h.st.TokenDeployed)
	assert.Equal(t, 0, h.st.TotalTweets)
}
