// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/diero-hl/agentclaw/internal/providers/llm"
)

// Fake replays Chunks and then Err for every StreamAnswer call. Complete
// defers to Respond when set, fails with CompleteErr when set, otherwise
// returns Replies in rotation.
type Fake struct {
	Chunks []string
	Err    error

	Replies     []string
	CompleteErr error
	Respond     func(req llm.Request) (string, error)

	mu       sync.Mutex
	Requests []llm.Request
	next     int
}

func (f *Fake) record(req llm.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
}

func (f *Fake) StreamAnswer(ctx context.Context, req llm.Request) (<-chan string, <-chan error) {
	f.record(req)
	out := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)
		for _, c := range f.Chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if f.Err != nil {
			errs <- f.Err
		}
	}()
	return out, errs
}

func (f *Fake) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.record(req)
	if f.Respond != nil {
		return f.Respond(req)
	}
	if f.CompleteErr != nil {
		return "", f.CompleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Replies) == 0 {
		return "", nil
	}
	r := f.Replies[f.next%len(f.Replies)]
	f.next++
	return r, nil
}

// Calls returns a snapshot of every request seen so far.
func (f *Fake) Calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.Requests...)
}

func (f *Fake) Model() string { return "fake-model" }

func (f *Fake) Close() error { return nil }
