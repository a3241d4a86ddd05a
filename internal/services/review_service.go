package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/diero-hl/agentclaw/internal/cache"
	"github.com/diero-hl/agentclaw/internal/models"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type CreateReviewInput struct {
	AuthorName   string
	AuthorAvatar *string
	Rating       int
	Comment      string
}

type ReviewService interface {
	List(ctx context.Context, slug string) ([]models.Review, error)
	// Create stores the review and refreshes the agent's rating aggregate.
	Create(ctx context.Context, slug string, in CreateReviewInput) (*models.Review, error)
}

type reviewService struct {
	agents  pgrepo.AgentRepository
	reviews pgrepo.ReviewRepository
	cache   cache.Cache
	now     func() time.Time
}

func NewReviewService(agents pgrepo.AgentRepository, reviews pgrepo.ReviewRepository, c cache.Cache) ReviewService {
	if c == nil {
		c = cache.Noop{}
	}
	return &reviewService{agents: agents, reviews: reviews, cache: c, now: time.Now}
}

func (s *reviewService) List(ctx context.Context, slug string) ([]models.Review, error) {
	const op = "ReviewService.List"

	a, err := s.agent(ctx, op, slug)
	if err != nil {
		return nil, err
	}
	rows, err := s.reviews.ListByAgent(ctx, a.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reviews", err)
	}
	if rows == nil {
		rows = []models.Review{}
	}
	return rows, nil
}

func (s *reviewService) Create(ctx context.Context, slug string, in CreateReviewInput) (*models.Review, error) {
	const op = "ReviewService.Create"

	var fields []utils.FieldError
	author := strings.TrimSpace(in.AuthorName)
	if author == "" {
		fields = append(fields, utils.FieldError{Field: "authorName", Rule: "required", Message: "authorName is required"})
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		fields = append(fields, utils.FieldError{Field: "comment", Rule: "required", Message: "comment is required"})
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		fields = append(fields, utils.FieldError{Field: "rating", Rule: "range", Message: "rating must be between 1 and 5"})
	}
	if len(fields) > 0 {
		return nil, utils.Invalid(op, "invalid review", fields, nil)
	}

	a, err := s.agent(ctx, op, slug)
	if err != nil {
		return nil, err
	}

	rv := &models.Review{
		ID:           uuid.NewString(),
		AgentID:      a.ID,
		AuthorName:   author,
		AuthorAvatar: in.AuthorAvatar,
		Rating:       in.Rating,
		Comment:      comment,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.reviews.Insert(ctx, rv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create review", err)
	}

	ratings, err := s.reviews.Ratings(ctx, a.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load ratings", err)
	}
	if avg, count, ok := AggregateRating(ratings); ok {
		if err := s.agents.UpdateRating(ctx, a.ID, avg, count); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update agent rating", err)
		}
	}

	_ = s.cache.Del(ctx, TrendingCacheKey)
	return rv, nil
}

func (s *reviewService) agent(ctx context.Context, op, slug string) (*models.Agent, error) {
	a, err := s.agents.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, msgAgentNotFound, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load agent", err)
	}
	return a, nil
}

// AggregateRating is the arithmetic mean rounded to two decimals. ok is false
// when there is nothing to aggregate and the stored value must stay as is.
func AggregateRating(ratings []int) (avg float64, count int, ok bool) {
	if len(ratings) == 0 {
		return 0, 0, false
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*100) / 100, len(ratings), true
}
