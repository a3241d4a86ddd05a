package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversationId"`
}

// sseSink frames each event as "data: <json>\n\n" and flushes it immediately.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

func (s *sseSink) Send(ev models.ChatEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// Stream relays one chat turn as server-sent events. Lookup and validation
// failures are plain JSON errors; once the stream is open, failures arrive as
// an in-stream error event.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, "ChatHandler.Stream", &req) {
		return
	}

	turn, err := h.svc.Start(c.Request.Context(), c.Param("slug"), req.Message, req.ConversationID)
	if err != nil {
		writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, APIError{Code: "INTERNAL", Message: "streaming unsupported"})
		return
	}

	hdr := c.Writer.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	flusher.Flush()

	if err := h.svc.Relay(c.Request.Context(), turn, &sseSink{w: c.Writer, f: flusher}); err != nil {
		_ = c.Error(err)
	}
}
