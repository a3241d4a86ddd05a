package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/providers/llm/llmtest"
	"github.com/diero-hl/agentclaw/internal/repositories/postgres/pgtest"
	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	r      *gin.Engine
	agents *pgtest.Agents
	convos *pgtest.Conversations
	llm    *llmtest.Fake
}

func seedAgent() models.Agent {
	prompt := "You are a copywriter."
	return models.Agent{
		ID:               "11111111-1111-1111-1111-111111111111",
		Name:             "Copy Writer",
		Slug:             "copy-writer",
		ShortDescription: "Writes copy",
		FullDescription:  "Writes marketing copy.",
		Category:         "Marketing",
		PublisherName:    "acme",
		SystemPrompt:     &prompt,
		CreatedAt:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		agents: pgtest.NewAgents(seedAgent()),
		convos: pgtest.NewConversations(),
		llm:    &llmtest.Fake{},
	}
	reviews := pgtest.NewReviews()

	agentH := NewAgentHandler(services.NewAgentService(ts.agents, nil, time.Minute))
	reviewH := NewReviewHandler(services.NewReviewService(ts.agents, reviews, nil))
	chat := services.NewChatService(ts.agents, ts.convos, ts.llm, services.ChatOptions{})
	chatH := NewChatHandler(chat)
	convH := NewConversationHandler(services.NewConversationService(ts.convos))

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	wsH := NewWSHandler(chat, log, nil)

	r := gin.New()
	r.GET("/agents", agentH.List)
	r.POST("/agents", agentH.Create)
	r.GET("/agents/:slug", agentH.Get)
	r.POST("/agents/:slug/deploy", agentH.Deploy)
	r.GET("/agents/:slug/reviews", reviewH.List)
	r.POST("/agents/:slug/reviews", reviewH.Create)
	r.POST("/agents/:slug/chat", chatH.Stream)
	r.GET("/agents/:slug/chat/ws", wsH.ChatWS)
	r.GET("/conversations/:id", convH.Get)
	r.DELETE("/conversations/:id", convH.Delete)
	ts.r = r
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// sseEvents parses "data: " lines, ignoring anything else.
func sseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		out = append(out, ev)
	}
	return out
}
