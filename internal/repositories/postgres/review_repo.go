package postgres

import (
	"context"

	"github.com/diero-hl/agentclaw/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Insert(ctx context.Context, rv *models.Review) error
	ListByAgent(ctx context.Context, agentID string) ([]models.Review, error)
	Ratings(ctx context.Context, agentID string) ([]int, error)
}

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Insert(ctx context.Context, rv *models.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *reviewRepo) ListByAgent(ctx context.Context, agentID string) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *reviewRepo) Ratings(ctx context.Context, agentID string) ([]int, error) {
	var out []int
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("agent_id = ?", agentID).
		Pluck("rating", &out).Error
	return out, err
}
