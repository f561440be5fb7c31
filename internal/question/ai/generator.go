package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultRetryBaseDelay = 900 * time.Millisecond
	maxResponseBytes      = 8 << 20
)

// ErrMalformedPayload means the generator answered with something that holds
// no recognizable question list.
var ErrMalformedPayload = errors.New("generator returned malformed payload")

// Config holds connection details for the generation service.
type Config struct {
	GeneratorURL   string
	GeneratorKey   string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// Generator implements question.Generator over HTTP.
type Generator struct {
	httpClient  *http.Client
	config      Config
	logger      zerolog.Logger
	generateURL string
}

var _ question.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	base := strings.TrimSuffix(cfg.GeneratorURL, "/")

	return &Generator{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:      cfg,
		logger:      logger.With().Str("component", "ai_generator").Logger(),
		generateURL: base + "/generate",
	}
}

// Generate submits the image and returns the raw records the service produced.
// Network errors and 429/500/503 responses are retried with a linearly growing
// delay; any other non-2xx status fails at once.
func (g *Generator) Generate(ctx context.Context, req question.GenerateRequest) ([]quiz.RawQuestion, error) {
	if g.config.GeneratorURL == "" {
		return nil, question.ErrGeneratorUnavailable
	}

	body, err := json.Marshal(generatorRequest{
		ImageDataURL: req.ImageDataURL,
		Topic:        strings.TrimSpace(req.Topic),
		Count:        question.ClampGenerateCount(req.Count),
	})
	if err != nil {
		return nil, err
	}

	var payload []byte
	attempt := 0
	err = retry.Do(ctx, g.backoff(), func(ctx context.Context) error {
		attempt++
		data, err := g.post(ctx, body)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return err
			}
			g.logger.Warn().Err(err).Int("attempt", attempt).Msg("generator request failed")
			return retry.RetryableError(err)
		}
		payload = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	raw, err := decodePayload(payload)
	if err != nil {
		g.logger.Warn().Err(err).Int("bytes", len(payload)).Msg("generator payload rejected")
		return nil, err
	}
	return raw, nil
}

// backoff waits base, 2*base, ... between attempts.
func (g *Generator) backoff() retry.Backoff {
	base := g.config.RetryBaseDelay
	n := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * base, false
	})
	return retry.WithMaxRetries(uint64(g.config.MaxRetries), linear)
}

func (g *Generator) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.generateURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.GeneratorKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.GeneratorKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read generator response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}
	return data, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("generator returned status %d", e.code)
}

func (e *statusError) retryable() bool {
	switch e.code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// decodePayload accepts a JSON document holding the question list, or free
// text with such a document embedded in it.
func decodePayload(data []byte) ([]quiz.RawQuestion, error) {
	if raw, err := quiz.DecodeRaw(data); err == nil {
		return raw, nil
	}
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end <= start {
		return nil, ErrMalformedPayload
	}
	raw, err := quiz.DecodeRaw(data[start : end+1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return raw, nil
}

type generatorRequest struct {
	ImageDataURL string `json:"imageDataUrl"`
	Topic        string `json:"topic,omitempty"`
	Count        int    `json:"count"`
}
