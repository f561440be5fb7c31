package question

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/w9840102-lang/mcqforge/pkg/http/errors"
)

// Handler exposes the topic bank over HTTP.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("component", "question_http").Logger(),
	}
}

type topicsResponse struct {
	Topics []Topic `json:"topics"`
}

// Topics handles GET /v1/topics?q=filter
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.Topics(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list topics")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Topic bank unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(topicsResponse{Topics: topics})
}
