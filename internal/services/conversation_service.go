package services

import (
	"context"
	"errors"

	"github.com/diero-hl/agentclaw/internal/models"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/utils"
)

type ConversationService interface {
	List(ctx context.Context) ([]models.Conversation, error)
	// Get returns the conversation with its messages oldest first.
	Get(ctx context.Context, id int64) (*models.Conversation, error)
	Delete(ctx context.Context, id int64) error
}

type conversationService struct {
	convos pgrepo.ConversationRepo
}

func NewConversationService(convos pgrepo.ConversationRepo) ConversationService {
	return &conversationService{convos: convos}
}

func (s *conversationService) List(ctx context.Context) ([]models.Conversation, error) {
	const op = "ConversationService.List"

	rows, err := s.convos.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversations", err)
	}
	if rows == nil {
		rows = []models.Conversation{}
	}
	return rows, nil
}

func (s *conversationService) Get(ctx context.Context, id int64) (*models.Conversation, error) {
	const op = "ConversationService.Get"

	c, err := s.convos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load conversation", err)
	}

	msgs, err := s.convos.Messages(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load messages", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.Messages = msgs
	return c, nil
}

func (s *conversationService) Delete(ctx context.Context, id int64) error {
	const op = "ConversationService.Delete"

	if err := s.convos.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete conversation", err)
	}
	return nil
}
