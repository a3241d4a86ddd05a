package services

import (
	"context"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/repositories/postgres/pgtest"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateAgentInput {
	return CreateAgentInput{
		Name:             "Inbox Zero Bot",
		ShortDescription: "Triage email",
		FullDescription:  "Reads and sorts your inbox.",
		Category:         "Support",
		PublisherName:    "acme",
		Price:            "19.99",
	}
}

func TestAgentCreateDefaults(t *testing.T) {
	repo := pgtest.NewAgents()
	svc := NewAgentService(repo, nil, time.Minute)

	a, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "inbox-zero-bot", a.Slug)
	assert.Equal(t, 19.99, a.Price)
	assert.Equal(t, "Free", a.PriceLabel)
	assert.Equal(t, "1.0.0", a.Version)
	assert.Equal(t, 0.0, a.Rating)
	assert.Zero(t, a.Views)
	assert.NotNil(t, a.Tags)

	got, err := repo.GetBySlug(context.Background(), "inbox-zero-bot")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestAgentCreateValidation(t *testing.T) {
	svc := NewAgentService(pgtest.NewAgents(), nil, time.Minute)

	in := validInput()
	in.Name = "  "
	in.Category = ""
	in.Price = "abc"

	_, err := svc.Create(context.Background(), in)
	requireCode(t, err, utils.CodeInvalidArgument)

	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	var fields []string
	for _, f := range ae.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "category", "price"}, fields)
}

func TestAgentCreateRejectsBadSlug(t *testing.T) {
	svc := NewAgentService(pgtest.NewAgents(), nil, time.Minute)

	in := validInput()
	in.Slug = "Not A Slug"
	_, err := svc.Create(context.Background(), in)
	requireCode(t, err, utils.CodeInvalidArgument)
}

func TestAgentCreateConflict(t *testing.T) {
	svc := NewAgentService(pgtest.NewAgents(), nil, time.Minute)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	requireCode(t, err, utils.CodeConflict)

	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "An agent with this name already exists", ae.Message)
}

func TestAgentGetIncrementsViews(t *testing.T) {
	repo := pgtest.NewAgents(testAgent("writer"))
	svc := NewAgentService(repo, nil, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := svc.Get(context.Background(), "writer")
		require.NoError(t, err)
	}

	a, _ := repo.GetBySlug(context.Background(), "writer")
	assert.Equal(t, 3, a.Views)
}

func TestAgentGetNotFound(t *testing.T) {
	svc := NewAgentService(pgtest.NewAgents(), nil, time.Minute)

	_, err := svc.Get(context.Background(), "missing")
	requireCode(t, err, utils.CodeNotFound)
}

func TestAgentDeploy(t *testing.T) {
	repo := pgtest.NewAgents(testAgent("writer"))
	svc := NewAgentService(repo, nil, time.Minute)

	a, err := svc.Deploy(context.Background(), "writer")
	require.NoError(t, err)
	assert.Equal(t, "id-writer", a.ID)
	assert.Equal(t, 1, a.Purchases)

	_, err = svc.Deploy(context.Background(), "missing")
	requireCode(t, err, utils.CodeNotFound)
}

func TestAgentListUsesCacheForDefaultListing(t *testing.T) {
	hot := testAgent("hot")
	hot.Purchases = 10
	repo := pgtest.NewAgents(testAgent("cold"), hot)
	c := newMemCache()
	svc := NewAgentService(repo, c, time.Minute)

	rows, err := svc.List(context.Background(), models.AgentFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "hot", rows[0].Slug)
	assert.True(t, c.has(TrendingCacheKey))

	_, err = svc.List(context.Background(), models.AgentFilter{Sort: models.SortTrending})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ListCalls)

	// filtered listings bypass the cache
	_, err = svc.List(context.Background(), models.AgentFilter{Search: "hot"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.ListCalls)

	_, err = svc.Deploy(context.Background(), "cold")
	require.NoError(t, err)
	assert.False(t, c.has(TrendingCacheKey))
}

func TestAgentListRejectsUnknownSort(t *testing.T) {
	svc := NewAgentService(pgtest.NewAgents(), nil, time.Minute)

	_, err := svc.List(context.Background(), models.AgentFilter{Sort: "cheapest"})
	requireCode(t, err, utils.CodeInvalidArgument)
}

func TestAgentSetFeatured(t *testing.T) {
	repo := pgtest.NewAgents(testAgent("writer"))
	svc := NewAgentService(repo, nil, time.Minute)

	a, err := svc.SetFeatured(context.Background(), "writer", true)
	require.NoError(t, err)
	assert.True(t, a.Featured)

	_, err = svc.SetFeatured(context.Background(), "missing", true)
	requireCode(t, err, utils.CodeNotFound)
}
