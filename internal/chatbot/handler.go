package chatbot

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wolfman30/clinic-booking/internal/http/httpjson"
	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

const maxFrameBytes = 64 << 10

// Assistant is the conversation surface the transports talk to.
type Assistant interface {
	HandleMessage(ctx context.Context, caller identity.Identity, message string) Reply
	Reset(ctx context.Context, caller identity.Identity) error
}

// ChatRequest is the body of POST /api/chat. Extra fields such as a
// client-side history are ignored.
type ChatRequest struct {
	Message string `json:"message"`
}

// InboundFrame is what a websocket client sends.
type InboundFrame struct {
	Type    string `json:"type"` // "message" (default) or "ping"
	Message string `json:"message"`
}

// OutboundFrame is what the websocket sends back.
type OutboundFrame struct {
	Type           string `json:"type"` // "message", "pong", "error"
	Response       string `json:"response,omitempty"`
	RequiresAction bool   `json:"requires_action"`
	Error          string `json:"error,omitempty"`
}

// Handler serves the assistant over HTTP and websocket.
type Handler struct {
	assistant Assistant
	logger    *logging.Logger
	metrics   *metrics.ChatbotMetrics
	upgrader  websocket.Upgrader
}

// NewHandler creates a chat handler. allowedOrigins gates websocket upgrades
// the same way the CORS middleware gates browser requests.
func NewHandler(assistant Assistant, allowedOrigins []string, logger *logging.Logger, m *metrics.ChatbotMetrics) *Handler {
	if assistant == nil {
		panic("chatbot: assistant required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		assistant: assistant,
		logger:    logger,
		metrics:   m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	allow := map[string]struct{}{}
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		if origin != "" {
			allow[origin] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allow[origin]
		return ok
	}
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req ChatRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpjson.Error(w, http.StatusBadRequest, "Message is required")
		return
	}

	start := time.Now()
	reply := h.assistant.HandleMessage(r.Context(), caller, req.Message)
	h.metrics.ObserveTurnLatency("http", time.Since(start).Seconds())
	httpjson.Write(w, http.StatusOK, reply)
}

// ResetSession handles DELETE /api/chat/session.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.assistant.Reset(r.Context(), caller); err != nil {
		h.logger.Error("failed to reset chat session", "error", err, "user_id", caller.UserID)
		httpjson.Error(w, http.StatusInternalServerError, "Failed to reset conversation")
		return
	}
	httpjson.Message(w, http.StatusOK, "Conversation reset")
}

// ServeWS handles GET /api/chat/ws. Every message frame gets exactly one reply frame.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("chat: websocket upgrade failed", "error", err, "user_id", caller.UserID)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	h.logger.Info("chat: connection opened", "user_id", caller.UserID)
	for {
		var frame InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("chat: websocket read failed", "error", err, "user_id", caller.UserID)
			}
			h.logger.Debug("chat: connection closed", "user_id", caller.UserID)
			return
		}

		out := h.handleFrame(r.Context(), caller, frame)
		if err := conn.WriteJSON(out); err != nil {
			h.logger.Warn("chat: websocket write failed", "error", err, "user_id", caller.UserID)
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, caller identity.Identity, frame InboundFrame) OutboundFrame {
	switch frame.Type {
	case "ping":
		return OutboundFrame{Type: "pong"}
	case "", "message":
	default:
		return OutboundFrame{Type: "error", Error: "unsupported frame type"}
	}
	if strings.TrimSpace(frame.Message) == "" {
		return OutboundFrame{Type: "error", Error: "message is required"}
	}

	start := time.Now()
	reply := h.assistant.HandleMessage(ctx, caller, frame.Message)
	h.metrics.ObserveTurnLatency("ws", time.Since(start).Seconds())
	return OutboundFrame{Type: "message", Response: reply.Text, RequiresAction: reply.RequiresAction}
}
