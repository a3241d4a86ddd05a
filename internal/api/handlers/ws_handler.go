package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// wsQueue bounds client frames waiting behind a running turn.
const wsQueue = 8

// WSHandler serves the chat relay over a WebSocket: every client frame is one
// turn and every server frame is one relay event.
type WSHandler struct {
	chat     services.ChatService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(chat services.ChatService, log logrus.FieldLogger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		chat: chat,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// wsSink adapts the connection to the relay's event sink.
type wsSink struct{ conn *wsConn }

func (s wsSink) Send(ev models.ChatEvent) error { return s.conn.writeJSON(ev) }

func (h *WSHandler) ChatWS(c *gin.Context) {
	slug := c.Param("slug")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go h.keepAlive(ctx, cancel, wc)
	frames := readFrames(ctx, cancel, wc)

	for {
		var data []byte
		select {
		case <-ctx.Done():
			return
		case d, ok := <-frames:
			if !ok {
				return
			}
			data = d
		}

		var msg chatRequest
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(models.ErrorEvent("invalid json"))
			continue
		}

		turn, err := h.chat.Start(ctx, slug, msg.Message, msg.ConversationID)
		if err != nil {
			_ = wc.writeJSON(models.ErrorEvent(clientMessage(err)))
			continue
		}

		if err := h.chat.Relay(ctx, turn, wsSink{conn: wc}); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{
				"agent":           slug,
				"conversation_id": turn.ConversationID,
			}).Warn("ws chat turn failed")
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (h *WSHandler) keepAlive(ctx context.Context, cancel context.CancelFunc, wc *wsConn) {
	t := time.NewTicker(wsPingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := wc.ping(); err != nil {
				cancel()
				return
			}
		}
	}
}

// readFrames keeps reading while turns run so pong control frames extend the
// read deadline. A read error cancels ctx, which also ends a running turn.
// Frames beyond wsQueue are refused with an error event.
func readFrames(ctx context.Context, cancel context.CancelFunc, wc *wsConn) <-chan []byte {
	conn := wc.c
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	frames := make(chan []byte, wsQueue)
	go func() {
		defer close(frames)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			select {
			case frames <- data:
			case <-ctx.Done():
				return
			default:
				_ = wc.writeJSON(models.ErrorEvent("too many pending messages"))
			}
		}
	}()
	return frames
}

// clientMessage is the safe text of an error for an in-band error frame.
func clientMessage(err error) string {
	var ae *utils.AppError
	if errors.As(err, &ae) && utils.HTTPStatus(err) < http.StatusInternalServerError {
		return ae.Message
	}
	return models.ChatFailureMessage
}
