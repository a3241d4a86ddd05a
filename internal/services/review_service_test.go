package services

import (
	"context"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/internal/repositories/postgres/pgtest"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateRating(t *testing.T) {
	avg, n, ok := AggregateRating([]int{5, 4, 3})
	require.True(t, ok)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, n)

	avg, n, ok = AggregateRating([]int{5, 4, 3, 2})
	require.True(t, ok)
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 4, n)

	avg, _, _ = AggregateRating([]int{5, 5, 4})
	assert.Equal(t, 4.67, avg)

	_, _, ok = AggregateRating(nil)
	assert.False(t, ok)
}

func TestReviewCreateRecomputesAggregate(t *testing.T) {
	agents := pgtest.NewAgents(testAgent("writer"))
	svc := NewReviewService(agents, pgtest.NewReviews(), nil)
	ctx := context.Background()

	for _, r := range []int{5, 4, 3} {
		_, err := svc.Create(ctx, "writer", CreateReviewInput{AuthorName: "bo", Rating: r, Comment: "ok"})
		require.NoError(t, err)
	}
	a, _ := agents.GetBySlug(ctx, "writer")
	assert.Equal(t, 4.0, a.Rating)
	assert.Equal(t, 3, a.ReviewCount)

	_, err := svc.Create(ctx, "writer", CreateReviewInput{AuthorName: "bo", Rating: 2, Comment: "meh"})
	require.NoError(t, err)
	a, _ = agents.GetBySlug(ctx, "writer")
	assert.Equal(t, 3.5, a.Rating)
	assert.Equal(t, 4, a.ReviewCount)
}

func TestReviewCreateRejectsOutOfRangeRating(t *testing.T) {
	agents := pgtest.NewAgents(testAgent("writer"))
	reviews := pgtest.NewReviews()
	svc := NewReviewService(agents, reviews, nil)

	for _, r := range []int{0, 6} {
		_, err := svc.Create(context.Background(), "writer", CreateReviewInput{AuthorName: "bo", Rating: r, Comment: "x"})
		requireCode(t, err, utils.CodeInvalidArgument)
	}

	ratings, _ := reviews.Ratings(context.Background(), "id-writer")
	assert.Empty(t, ratings)
}

func TestReviewCreateUnknownAgent(t *testing.T) {
	svc := NewReviewService(pgtest.NewAgents(), pgtest.NewReviews(), nil)

	_, err := svc.Create(context.Background(), "missing", CreateReviewInput{AuthorName: "bo", Rating: 3, Comment: "x"})
	requireCode(t, err, utils.CodeNotFound)
}

func TestReviewListNewestFirst(t *testing.T) {
	svc := NewReviewService(pgtest.NewAgents(testAgent("writer")), pgtest.NewReviews(), nil).(*reviewService)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for _, c := range []string{"first", "second"} {
		_, err := svc.Create(context.Background(), "writer", CreateReviewInput{AuthorName: "bo", Rating: 4, Comment: c})
		require.NoError(t, err)
	}

	rows, err := svc.List(context.Background(), "writer")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "second", rows[0].Comment)

	_, err = svc.List(context.Background(), "missing")
	requireCode(t, err, utils.CodeNotFound)
}

func TestReviewCreateInvalidatesListing(t *testing.T) {
	c := newMemCache()
	require.NoError(t, c.SetJSON(context.Background(), TrendingCacheKey, []string{"stale"}, time.Minute))
	svc := NewReviewService(pgtest.NewAgents(testAgent("writer")), pgtest.NewReviews(), c)

	_, err := svc.Create(context.Background(), "writer", CreateReviewInput{AuthorName: "bo", Rating: 4, Comment: "x"})
	require.NoError(t, err)
	assert.False(t, c.has(TrendingCacheKey))
}
