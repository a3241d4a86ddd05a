package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/diero-hl/agentclaw/internal/cache"
	"github.com/diero-hl/agentclaw/internal/models"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/google/uuid"
)

// TrendingCacheKey holds the unfiltered default listing.
const TrendingCacheKey = "agents:list:trending"

const msgAgentNotFound = "agent not found"

type CreateAgentInput struct {
	Name             string
	Slug             string
	ShortDescription string
	FullDescription  string
	Category         string
	Price            string
	PriceLabel       string
	ImageURL         string
	Capabilities     []string
	Tags             []string
	Platforms        []string
	PublisherName    string
	PublisherAvatar  *string
	Version          string
	SystemPrompt     *string
}

type AgentService interface {
	List(ctx context.Context, f models.AgentFilter) ([]models.Agent, error)
	// Get returns the agent and records one view.
	Get(ctx context.Context, slug string) (*models.Agent, error)
	Create(ctx context.Context, in CreateAgentInput) (*models.Agent, error)
	Deploy(ctx context.Context, slug string) (*models.Agent, error)
	SetFeatured(ctx context.Context, slug string, featured bool) (*models.Agent, error)
}

type agentService struct {
	agents pgrepo.AgentRepository
	cache  cache.Cache
	ttl    time.Duration
	now    func() time.Time
}

func NewAgentService(agents pgrepo.AgentRepository, c cache.Cache, ttl time.Duration) AgentService {
	if c == nil {
		c = cache.Noop{}
	}
	return &agentService{agents: agents, cache: c, ttl: ttl, now: time.Now}
}

func (s *agentService) List(ctx context.Context, f models.AgentFilter) ([]models.Agent, error) {
	const op = "AgentService.List"

	if f.Sort != "" && f.Sort != models.SortTrending && f.Sort != models.SortNewest && f.Sort != models.SortTopRated {
		return nil, utils.Invalid(op, "invalid sort", []utils.FieldError{{
			Field:   "sort",
			Rule:    "oneof",
			Message: "sort must be one of trending, newest, top-rated",
		}}, nil)
	}

	cacheable := f.IsDefault()
	if cacheable {
		var cached []models.Agent
		// cache failures fall through to the database
		if hit, err := s.cache.GetJSON(ctx, TrendingCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.agents.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list agents", err)
	}
	if rows == nil {
		rows = []models.Agent{}
	}

	if cacheable {
		_ = s.cache.SetJSON(ctx, TrendingCacheKey, rows, s.ttl)
	}
	return rows, nil
}

func (s *agentService) Get(ctx context.Context, slug string) (*models.Agent, error) {
	const op = "AgentService.Get"

	a, err := s.getBySlug(ctx, op, slug)
	if err != nil {
		return nil, err
	}
	if err := s.agents.IncrementViews(ctx, slug); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record view", err)
	}
	return a, nil
}

func (s *agentService) Create(ctx context.Context, in CreateAgentInput) (*models.Agent, error) {
	const op = "AgentService.Create"

	a, err := s.buildAgent(op, in)
	if err != nil {
		return nil, err
	}

	if err := s.agents.Create(ctx, a); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "An agent with this name already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create agent", err)
	}

	s.invalidate(ctx)
	return a, nil
}

func (s *agentService) buildAgent(op string, in CreateAgentInput) (*models.Agent, error) {
	var fields []utils.FieldError
	required := func(field, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			fields = append(fields, utils.FieldError{Field: field, Rule: "required", Message: field + " is required"})
		}
		return v
	}

	name := required("name", in.Name)
	short := required("shortDescription", in.ShortDescription)
	full := required("fullDescription", in.FullDescription)
	category := required("category", in.Category)
	publisher := required("publisherName", in.PublisherName)

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" && name != "" {
		fields = append(fields, utils.FieldError{Field: "slug", Rule: "slug", Message: "slug could not be derived from name"})
	} else if slug != "" && utils.Slugify(slug) != slug {
		fields = append(fields, utils.FieldError{Field: "slug", Rule: "slug", Message: "slug may only contain lowercase letters, digits and dashes"})
	}

	price := 0.0
	if p := strings.TrimSpace(in.Price); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			fields = append(fields, utils.FieldError{Field: "price", Rule: "numeric", Message: "price must be a non-negative number"})
		} else {
			price = v
		}
	}

	if len(fields) > 0 {
		return nil, utils.Invalid(op, "invalid agent", fields, nil)
	}

	return &models.Agent{
		ID:               uuid.NewString(),
		Name:             name,
		Slug:             slug,
		ShortDescription: short,
		FullDescription:  full,
		Category:         category,
		Price:            price,
		PriceLabel:       orDefault(in.PriceLabel, "Free"),
		ImageURL:         strings.TrimSpace(in.ImageURL),
		Capabilities:     nonNil(in.Capabilities),
		Tags:             nonNil(in.Tags),
		Platforms:        nonNil(in.Platforms),
		PublisherName:    publisher,
		PublisherAvatar:  in.PublisherAvatar,
		Version:          orDefault(in.Version, "1.0.0"),
		SystemPrompt:     in.SystemPrompt,
		CreatedAt:        s.now().UTC(),
	}, nil
}

func (s *agentService) Deploy(ctx context.Context, slug string) (*models.Agent, error) {
	const op = "AgentService.Deploy"

	a, err := s.getBySlug(ctx, op, slug)
	if err != nil {
		return nil, err
	}
	if err := s.agents.IncrementPurchases(ctx, slug); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, msgAgentNotFound, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to record deployment", err)
	}
	a.Purchases++

	s.invalidate(ctx)
	return a, nil
}

func (s *agentService) SetFeatured(ctx context.Context, slug string, featured bool) (*models.Agent, error) {
	const op = "AgentService.SetFeatured"

	if err := s.agents.SetFeatured(ctx, slug, featured); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, msgAgentNotFound, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update agent", err)
	}
	s.invalidate(ctx)
	return s.getBySlug(ctx, op, slug)
}

func (s *agentService) getBySlug(ctx context.Context, op, slug string) (*models.Agent, error) {
	a, err := s.agents.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, msgAgentNotFound, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load agent", err)
	}
	return a, nil
}

func (s *agentService) invalidate(ctx context.Context) {
	_ = s.cache.Del(ctx, TrendingCacheKey)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
