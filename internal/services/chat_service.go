package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/utils"
	"gorm.io/datatypes"
)

// EventSink receives relay events in order. A Send error means the client is
// gone and the turn is abandoned.
type EventSink interface {
	Send(ev models.ChatEvent) error
}

// ChatTurn is a validated turn whose user message is already stored.
type ChatTurn struct {
	Agent          *models.Agent
	ConversationID int64
	History        []models.Message
}

type ChatOptions struct {
	MaxTokens            int
	FallbackSystemPrompt string
}

type ChatService interface {
	// Start resolves the agent, validates the message, creates the conversation
	// when conversationID is nil or not positive and stores the user message.
	// Every error here happens before a stream is opened.
	Start(ctx context.Context, slug, message string, conversationID *int64) (*ChatTurn, error)
	// Relay streams the reply into sink: conversation_id, content fragments, then
	// done after the assistant message is stored, or a single error event. The
	// returned error is for server-side logging only.
	Relay(ctx context.Context, turn *ChatTurn, sink EventSink) error
}

type chatService struct {
	agents   pgrepo.AgentRepository
	convos   pgrepo.ConversationRepo
	provider llm.Provider
	opts     ChatOptions
	now      func() time.Time
}

func NewChatService(agents pgrepo.AgentRepository, convos pgrepo.ConversationRepo, provider llm.Provider, opts ChatOptions) ChatService {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	if opts.FallbackSystemPrompt == "" {
		opts.FallbackSystemPrompt = "You are a helpful AI assistant."
	}
	return &chatService{agents: agents, convos: convos, provider: provider, opts: opts, now: time.Now}
}

func (s *chatService) Start(ctx context.Context, slug, message string, conversationID *int64) (*ChatTurn, error) {
	const op = "ChatService.Start"

	agent, err := s.agents.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, msgAgentNotFound, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load agent", err)
	}

	if strings.TrimSpace(message) == "" {
		return nil, utils.Invalid(op, "Message is required", []utils.FieldError{{
			Field:   "message",
			Rule:    "required",
			Message: "message must not be empty",
		}}, nil)
	}

	var convID int64
	// ids start at 1; 0 from a client means a new conversation
	if conversationID != nil && *conversationID > 0 {
		c, err := s.convos.GetByID(ctx, *conversationID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load conversation", err)
		}
		convID = c.ID
	} else {
		slugRef := agent.Slug
		c := &models.Conversation{Title: agent.Name, AgentSlug: &slugRef, CreatedAt: s.now().UTC()}
		if err := s.convos.Create(ctx, c); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
		}
		convID = c.ID
	}

	userMsg := &models.Message{
		ConversationID: convID,
		Role:           models.RoleUser,
		Content:        message,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.convos.AppendMessage(ctx, userMsg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store message", err)
	}

	history, err := s.convos.Messages(ctx, convID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}

	return &ChatTurn{Agent: agent, ConversationID: convID, History: history}, nil
}

func (s *chatService) Relay(ctx context.Context, turn *ChatTurn, sink EventSink) error {
	const op = "ChatService.Relay"

	// a failed Send cancels generation so the provider stops streaming
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, errs := s.provider.StreamAnswer(ctx, s.request(turn))
	defer func() {
		for range chunks {
		}
	}()

	fail := func(msg string, err error) error {
		_ = sink.Send(models.ErrorEvent(models.ChatFailureMessage))
		return utils.E(utils.CodeUnavailable, op, msg, err)
	}

	if err := sink.Send(models.ConversationIDEvent(turn.ConversationID)); err != nil {
		cancel()
		return utils.E(utils.CodeUnavailable, op, "client went away", err)
	}

	var full strings.Builder
	fragments := 0
	for chunk := range chunks {
		full.WriteString(chunk)
		fragments++
		if err := sink.Send(models.ContentEvent(chunk)); err != nil {
			cancel()
			return utils.E(utils.CodeUnavailable, op, "client went away", err)
		}
	}
	if err := <-errs; err != nil {
		return fail("generation failed", err)
	}

	meta, _ := json.Marshal(map[string]any{
		"model":     s.provider.Model(),
		"fragments": fragments,
	})
	reply := &models.Message{
		ConversationID: turn.ConversationID,
		Role:           models.RoleAssistant,
		Content:        full.String(),
		Metadata:       datatypes.JSON(meta),
		CreatedAt:      s.now().UTC(),
	}
	// the reply is complete; keep it even if the client disconnects now
	if err := s.convos.AppendMessage(context.WithoutCancel(ctx), reply); err != nil {
		return fail("failed to store reply", err)
	}

	if err := sink.Send(models.DoneEvent()); err != nil {
		return utils.E(utils.CodeUnavailable, op, "client went away", err)
	}
	return nil
}

func (s *chatService) request(turn *ChatTurn) llm.Request {
	system := s.opts.FallbackSystemPrompt
	if p := turn.Agent.SystemPrompt; p != nil && strings.TrimSpace(*p) != "" {
		system = *p
	}

	msgs := make([]llm.Message, 0, len(turn.History))
	for _, m := range turn.History {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return llm.Request{
		System:    system,
		Messages:  msgs,
		MaxTokens: s.opts.MaxTokens,
	}
}
