package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/w9840102-lang/mcqforge/pkg/http/errors"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

// WSHandler streams session events to clients and accepts answer taps.
type WSHandler struct {
	service   *Service
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	tapWindow time.Duration
	logger    zerolog.Logger
}

// NewWSHandler creates the session WebSocket handler.
func NewWSHandler(service *Service, hub *ws.Hub, upgrader websocket.Upgrader, tapWindow time.Duration, logger zerolog.Logger) *WSHandler {
	if tapWindow <= 0 {
		tapWindow = DefaultTapWindow
	}
	return &WSHandler{
		service:   service,
		hub:       hub,
		upgrader:  upgrader,
		tapWindow: tapWindow,
		logger:    logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandleWebSocket handles GET /ws/sessions/{id}?token=...
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSession, "Invalid session id")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Missing token")
		return
	}
	if err := h.service.Authorize(token, id); err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		respondTokenError(w, err)
		return
	}
	if !h.service.Exists(id) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.handleConnection(conn, id)
}

func (h *WSHandler) handleConnection(conn *websocket.Conn, id uuid.UUID) {
	logger := h.logger.With().Str("session_id", id.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.Join(id, wsConn)
	defer h.hub.Leave(id, wsConn)

	go wsConn.WritePump()

	view, err := h.service.Get(context.Background(), id)
	if err != nil {
		h.sendError(wsConn, "", err)
		return
	}
	if msg, err := ws.NewMessage(ws.TypeSessionLoaded, view); err == nil {
		_ = wsConn.Send(msg)
	}

	taps := NewDebouncer(h.tapWindow)
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), wsConn, id, taps, msg)
	})
}

func (h *WSHandler) handleMessage(ctx context.Context, conn *ws.Connection, id uuid.UUID, taps *Debouncer, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeAnswer:
		var req ws.AnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendCode(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid answer payload")
		}
		if !taps.Allow(TapKey(req.Question, req.Option)) {
			return h.sendCode(conn, msg.RequestID, httperrors.ErrCodeDuplicateTap, "Duplicate tap ignored")
		}
		// Accepted answers reach every watcher through the session observer.
		if _, err := h.service.Answer(ctx, id, req.Question, req.Option); err != nil {
			return h.sendError(conn, msg.RequestID, err)
		}
		return nil
	case ws.TypeReset:
		if _, err := h.service.Reset(ctx, id); err != nil {
			return h.sendError(conn, msg.RequestID, err)
		}
		return nil
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		return h.sendCode(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, "Unknown message type: "+msg.Type)
	}
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID string, err error) error {
	_, code, message := ErrorStatus(err)
	return h.sendCode(conn, requestID, code, message)
}

func (h *WSHandler) sendCode(conn *ws.Connection, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
