package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/auth/jwt"
	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
	httperrors "github.com/w9840102-lang/mcqforge/pkg/http/errors"
)

// Image data URLs are sent inline, so load bodies may be large.
const maxLoadBodyBytes = 12 << 20

// HTTPHandlers provides REST endpoints for quiz sessions.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// Routes mounts the session endpoints on r.
func (h *HTTPHandlers) Routes(r chi.Router) {
	r.Post("/sessions", h.Create)
	r.Route("/sessions/{id}", func(sr chi.Router) {
		sr.Use(h.RequireSessionToken)
		sr.Get("/", h.Get)
		sr.Post("/load", h.Load)
		sr.Post("/answers", h.Answer)
		sr.Post("/reset", h.Reset)
	})
}

type ctxSessionKey struct{}

func sessionIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxSessionKey{}).(uuid.UUID)
	return id
}

// RequireSessionToken checks that the bearer token was issued for the
// session named in the path.
func (h *HTTPHandlers) RequireSessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSession, "Invalid session id")
			return
		}

		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Session token required")
			return
		}

		if err := h.service.Authorize(token, id); err != nil {
			h.logger.Warn().Err(err).Str("session_id", id.String()).Msg("session token rejected")
			respondTokenError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, id)))
	})
}

// Create handles POST /v1/sessions
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Create(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create session")
		httperrors.RespondInternalError(w, "Could not create session")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), sessionIDFrom(r.Context()))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Load handles POST /v1/sessions/{id}/load
func (h *HTTPHandlers) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoadBodyBytes)).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if field, msg := validateLoad(req); field != "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, msg, field)
		return
	}

	view, err := h.service.Load(r.Context(), sessionIDFrom(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Question *int `json:"question"`
	Option   *int `json:"option"`
}

// Answer handles POST /v1/sessions/{id}/answers
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Question == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question is required", "question")
		return
	}
	if req.Option == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "option is required", "option")
		return
	}

	res, err := h.service.Answer(r.Context(), sessionIDFrom(r.Context()), *req.Question, *req.Option)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *HTTPHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Reset(r.Context(), sessionIDFrom(r.Context()))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]quiz.Stats{"stats": stats})
}

func validateLoad(req LoadRequest) (field, msg string) {
	switch strings.ToLower(strings.TrimSpace(req.Source)) {
	case "":
		return "source", "source is required"
	case SourceTopic:
		if strings.TrimSpace(req.Topic) == "" {
			return "topic", "topic is required"
		}
	case SourceImage:
		if !strings.HasPrefix(req.ImageDataURL, "data:image/") {
			return "image_data_url", "image_data_url must be an image data URL"
		}
	}
	return "", ""
}

// ErrorStatus maps service errors onto an HTTP status and error code.
func ErrorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, httperrors.ErrCodeSessionNotFound, "Session not found"
	case errors.Is(err, ErrInvalidSource):
		return http.StatusBadRequest, httperrors.ErrCodeInvalidSource, "source must be topic, image or clear"
	case errors.Is(err, quiz.ErrEmptySession):
		return http.StatusConflict, httperrors.ErrCodeEmptySession, "No questions loaded"
	case errors.Is(err, quiz.ErrQuestionOutOfRange):
		return http.StatusConflict, httperrors.ErrCodeQuestionOutOfRange, "Question index out of range"
	case errors.Is(err, quiz.ErrOptionOutOfRange):
		return http.StatusConflict, httperrors.ErrCodeOptionOutOfRange, "Option index out of range"
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return http.StatusConflict, httperrors.ErrCodeAlreadyAnswered, "Question already answered"
	case errors.Is(err, quiz.ErrNothingToReset):
		return http.StatusConflict, httperrors.ErrCodeNothingToReset, "Nothing to reset"
	case errors.Is(err, question.ErrNoValidQuestions):
		return http.StatusUnprocessableEntity, httperrors.ErrCodeInvalidFormat, "Generator returned invalid format"
	case errors.Is(err, question.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable, httperrors.ErrCodeGeneratorUnavailable, "Question generator is not configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, httperrors.ErrCodeUpstreamError, "Request timed out"
	default:
		return http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "Could not build question set"
	}
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	status, code, msg := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Int("status", status).Msg("session request failed")
	}
	httperrors.RespondError(w, status, code, msg)
}

func respondTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeTokenExpired, "Session token expired")
	case errors.Is(err, jwt.ErrWrongSession):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Token was issued for another session")
	default:
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid session token")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
