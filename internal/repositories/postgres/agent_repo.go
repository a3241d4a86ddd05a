package postgres

import (
	"context"
	"strings"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/utils"
	"gorm.io/gorm"
)

type AgentRepository interface {
	List(ctx context.Context, f models.AgentFilter) ([]models.Agent, error)
	GetBySlug(ctx context.Context, slug string) (*models.Agent, error)
	Create(ctx context.Context, a *models.Agent) error
	IncrementViews(ctx context.Context, slug string) error
	IncrementPurchases(ctx context.Context, slug string) error
	UpdateRating(ctx context.Context, agentID string, rating float64, reviewCount int) error
	SetFeatured(ctx context.Context, slug string, featured bool) error
}

type agentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepository {
	return &agentRepo{db: db}
}

func (r *agentRepo) List(ctx context.Context, f models.AgentFilter) ([]models.Agent, error) {
	q := r.db.WithContext(ctx).Model(&models.Agent{})

	if f.Category != "" && f.Category != "All" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(short_description) LIKE ? OR LOWER(category) LIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE LOWER(t) LIKE ?)",
			like, like, like, like,
		)
	}

	switch f.Sort {
	case models.SortNewest:
		q = q.Order("created_at DESC")
	case models.SortTopRated:
		q = q.Order("rating DESC").Order("review_count DESC")
	default:
		q = q.Order("purchases DESC")
	}

	var rows []models.Agent
	err := q.Find(&rows).Error
	return rows, err
}

func (r *agentRepo) GetBySlug(ctx context.Context, slug string) (*models.Agent, error) {
	var a models.Agent
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *agentRepo) Create(ctx context.Context, a *models.Agent) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *agentRepo) IncrementViews(ctx context.Context, slug string) error {
	return r.increment(ctx, slug, "views")
}

func (r *agentRepo) IncrementPurchases(ctx context.Context, slug string) error {
	return r.increment(ctx, slug, "purchases")
}

// increment bumps a counter in a single statement so concurrent requests never
// lose an update.
func (r *agentRepo) increment(ctx context.Context, slug, column string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("slug = ?", slug).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *agentRepo) UpdateRating(ctx context.Context, agentID string, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", agentID).
		UpdateColumns(map[string]any{"rating": rating, "review_count": reviewCount}).Error
}

func (r *agentRepo) SetFeatured(ctx context.Context, slug string, featured bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("slug = ?", slug).
		UpdateColumn("featured", featured)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
