package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

const DefaultAnthropicModel = "claude-sonnet-4-20250514"

type Anthropic struct {
	llm   llms.Model
	model string
}

func NewAnthropic(apiKey, modelName string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable is not set")
	}
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}

	m, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(modelName),
	)
	if err != nil {
		return nil, err
	}
	return &Anthropic{llm: m, model: modelName}, nil
}

func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Close() error { return nil }

func (a *Anthropic) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		stream := llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			select {
			case out <- string(chunk):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		_, err := a.llm.GenerateContent(ctx, toMessageContent(req), append(callOptions(req), stream)...)
		if err != nil {
			errs <- err
		}
	}()

	return out, errs
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := a.llm.GenerateContent(ctx, toMessageContent(req), callOptions(req)...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(req Request) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		// the messages API rejects empty text blocks; an empty assistant turn
		// carries nothing the model needs
		if m.Content == "" {
			continue
		}
		role := llms.ChatMessageTypeHuman
		if m.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

func callOptions(req Request) []llms.CallOption {
	var opts []llms.CallOption
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	return opts
}
