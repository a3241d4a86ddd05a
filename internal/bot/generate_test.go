package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanOutput(t *testing.T) {
	assert.Equal(t, "gm Base", CleanOutput("  \"gm Base\"  "))
	assert.Equal(t, "it's fine", CleanOutput("'it's fine'"))
	assert.Equal(t, `say "wagmi`, CleanOutput(`say "wagmi"`))
	assert.Equal(t, "", CleanOutput("   "))
}

func TestCleanOutputCapsAtSentenceEnd(t *testing.T) {
	head := strings.Repeat("a", 300) + ". "
	long := head + strings.Repeat("b", 4000)

	got := CleanOutput(long)
	assert.Equal(t, strings.Repeat("a", 300)+".", got)
}

func TestCleanOutputCapsWithEllipsis(t *testing.T) {
	long := strings.Repeat("x", 5000)
	got := CleanOutput(long)
	assert.Equal(t, strings.Repeat("x", 3900)+"...", got)
}

func TestSystemPromptSections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sys := h.bot.systemPrompt(ctx, "EXTRA")
	assert.True(t, strings.HasPrefix(sys, "You are a test persona."))
	assert.Contains(t, sys, "## CHAIN FOCUS")
	assert.Contains(t, sys, "## TOKEN STATUS")
	assert.Contains(t, sys, "EXTRA\n\nRULES:")
	assert.NotContains(t, sys, "Your recent posts")

	require.NoError(t, h.mem.Append(ctx, memory.Entry{Type: memory.TypeTweet, Content: "first take"}))
	require.NoError(t, h.mem.Append(ctx, memory.Entry{Type: memory.TypeLike, TweetID: "9"}))
	require.NoError(t, h.mem.Append(ctx, memory.Entry{Type: memory.TypeTweet, Content: "second take"}))
	h.st.TokenDeployed = true
	h.st.TokenTicker = "$CLAW"
	h.st.TokenDeployDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	sys = h.bot.systemPrompt(ctx, "")
	assert.Contains(t, sys, "## YOUR TOKEN\nYou have deployed your own token $CLAW")
	assert.Contains(t, sys, "Deploy date: 2026-10-01T00:00:00Z")
	assert.True(t, strings.HasSuffix(sys, "(DO NOT repeat these themes):\nfirst take\n---\nsecond take"))
}

func TestGenerateUsesModelSettings(t *testing.T) {
	h := newHarness(t)
	h.llm.Replies = []string{`"hello"`}

	assert.Equal(t, "hello", h.bot.generate(context.Background(), "topic", ""))

	calls := h.llm.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 300, calls[0].MaxTokens)
	assert.InDelta(t, 0.8, calls[0].Temperature, 1e-9)
	require.Len(t, calls[0].Messages, 1)
	assert.Equal(t, "user", calls[0].Messages[0].Role)
	assert.Equal(t, "topic", calls[0].Messages[0].Content)
}

func TestGenerateFailureIsEmpty(t *testing.T) {
	h := newHarness(t)
	h.llm.CompleteErr = errX
	assert.Equal(t, "", h.bot.generate(context.Background(), "topic", ""))
}

func TestParseTokenDetails(t *testing.T) {
	name, ticker := ParseTokenDetails("NAME: Claw Machine\nTICKER: clawm")
	assert.Equal(t, "Claw Machine", name)
	assert.Equal(t, "CLAWM", ticker)

	name, ticker = ParseTokenDetails("name: Agentclaw | ticker: pinch")
	assert.Equal(t, "Agentclaw", name)
	assert.Equal(t, "PINCH", ticker)

	name, ticker = ParseTokenDetails("no idea")
	assert.Equal(t, "Agentclaw", name)
	assert.Equal(t, "CLAW", ticker)
}

func TestParseTweetID(t *testing.T) {
	assert.Equal(t, "1789", ParseTweetID("https://x.com/someone/status/1789?s=20"))
	assert.Equal(t, "1789", ParseTweetID("1789"))
}

func TestLocalHour(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, 19, localHour(at(0), -5))
	assert.Equal(t, 0, localHour(at(5), -5))
	assert.Equal(t, 1, localHour(at(23), 2))
}
