package llm

import (
	"context"
	"strings"
)

// Message is one turn of model context. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64 // 0 = provider default
}

type Provider interface {
	// StreamAnswer returns a stream of text chunks (incremental). errs receives at
	// most one error and is closed before chunks is.
	StreamAnswer(ctx context.Context, req Request) (chunks <-chan string, errs <-chan error)
	// Complete runs the same request and returns the whole reply.
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
	Close() error
}

// Collect drains a StreamAnswer pair into one string.
func Collect(chunks <-chan string, errs <-chan error) (string, error) {
	var sb strings.Builder
	for c := range chunks {
		sb.WriteString(c)
	}
	if err := <-errs; err != nil {
		return "", err
	}
	return sb.String(), nil
}
