package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	if projectID == "" {
		return nil, errors.New("VERTEX_PROJECT environment variable is not set")
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Model() string { return v.modelName }

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if len(req.Messages) == 0 {
			errs <- errors.New("vertex: empty message history")
			return
		}

		// one model value per request: system instruction and limits are per call
		m := v.client.GenerativeModel(v.modelName)
		if req.System != "" {
			m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(req.System)}}
		}
		if req.MaxTokens > 0 {
			m.SetMaxOutputTokens(int32(req.MaxTokens))
		}
		if req.Temperature > 0 {
			m.SetTemperature(float32(req.Temperature))
		}

		cs := m.StartChat()
		last := req.Messages[len(req.Messages)-1]
		for _, msg := range req.Messages[:len(req.Messages)-1] {
			if msg.Content == "" {
				continue
			}
			role := "user"
			if msg.Role == "assistant" {
				role = "model"
			}
			cs.History = append(cs.History, &vertexgenai.Content{
				Role:  role,
				Parts: []vertexgenai.Part{vertexgenai.Text(msg.Content)},
			})
		}

		it := cs.SendMessageStream(ctx, vertexgenai.Text(last.Content))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					t, ok := part.(vertexgenai.Text)
					if !ok || t == "" {
						continue
					}
					select {
					case out <- string(t):
					case <-ctx.Done():
						errs <- ctx.Err()
						return
					}
				}
			}
		}
	}()

	return out, errs
}

func (v *VertexGemini) Complete(ctx context.Context, req Request) (string, error) {
	return Collect(v.StreamAnswer(ctx, req))
}
