package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReviewUpdatesRating(t *testing.T) {
	ts := newTestServer(t)

	for _, r := range []int{5, 4, 3} {
		w := ts.do(http.MethodPost, "/agents/copy-writer/reviews", map[string]any{
			"authorName": "bo", "rating": r, "comment": "fine",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := ts.do(http.MethodGet, "/agents/copy-writer", nil)
	var a models.Agent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, 4.0, a.Rating)
	assert.Equal(t, 3, a.ReviewCount)

	w = ts.do(http.MethodGet, "/agents/copy-writer/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)
}

func TestCreateReviewRatingOutOfRange(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/agents/copy-writer/reviews", map[string]any{
		"authorName": "bo", "rating": 6, "comment": "too good",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	e := decodeError(t, w)
	require.Len(t, e.Errors, 1)
	assert.Equal(t, "rating", e.Errors[0].Field)
	assert.Equal(t, "max", e.Errors[0].Rule)

	w = ts.do(http.MethodGet, "/agents/copy-writer/reviews", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReviewsUnknownAgent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/agents/nope/reviews", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/agents/nope/reviews", map[string]any{"authorName": "bo", "rating": 3, "comment": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
