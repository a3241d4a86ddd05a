package bot

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
)

const (
	maxOutputChars = 4000
	cutOutputChars = 3900
	recentWindow   = 10
)

func (b *Bot) systemPrompt(ctx context.Context, extra string) string {
	var sb strings.Builder
	sb.WriteString(b.soul)
	sb.WriteString(chainFocus)
	if b.st.TokenDeployed {
		sb.WriteString(tokenDeployedSection(b.st.TokenTicker, b.st.TokenDeployDate))
	} else {
		sb.WriteString(tokenNotDeployed)
	}
	sb.WriteString(extra)
	sb.WriteString(outputRules)

	recent, err := memory.RecentOfType(ctx, b.mem, memory.TypeTweet, recentWindow)
	if err != nil {
		b.log.WithError(err).Debug("recent memory unavailable")
	}
	if len(recent) > 0 {
		posts := make([]string, len(recent))
		for i, e := range recent {
			posts[i] = e.Content
		}
		sb.WriteString(recentPostsHeader)
		sb.WriteString(strings.Join(posts, "\n---\n"))
	}
	return sb.String()
}

// generate returns cleaned model output, or "" when the call failed.
func (b *Bot) generate(ctx context.Context, prompt, extra string) string {
	return b.complete(ctx, b.systemPrompt(ctx, extra), prompt)
}

func (b *Bot) complete(ctx context.Context, system, prompt string) string {
	text, err := b.llm.Complete(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   b.cfg.Model.MaxTokens,
		Temperature: b.cfg.Model.Temperature,
	})
	if err != nil {
		b.log.WithError(err).Warn("generation failed")
		return ""
	}
	return CleanOutput(text)
}

// CleanOutput trims model text, drops one surrounding quote on each side and
// caps very long output at a sentence boundary.
func CleanOutput(text string) string {
	text = strings.TrimSpace(text)
	if text != "" && (text[0] == '"' || text[0] == '\'') {
		text = text[1:]
	}
	if n := len(text); n > 0 && (text[n-1] == '"' || text[n-1] == '\'') {
		text = text[:n-1]
	}
	return capLength(text)
}

// capLength cuts text over maxOutputChars back to the last sentence end
// inside the first cutOutputChars, or marks the cut with "...".
func capLength(text string) string {
	if utf8.RuneCountInString(text) <= maxOutputChars {
		return text
	}
	cut := truncate(text, cutOutputChars)
	last := -1
	for _, end := range []string{". ", ".\n", "!", "?"} {
		if i := strings.LastIndex(cut, end); i > last {
			last = i
		}
	}
	if last > 200 {
		return cut[:last+1]
	}
	return cut + "..."
}

func isRT(answer string) bool {
	return strings.ToUpper(strings.TrimSpace(answer)) == "RT"
}
