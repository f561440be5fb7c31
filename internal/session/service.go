package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/auth/jwt"
	"github.com/w9840102-lang/mcqforge/internal/metrics"
	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

// Load sources accepted by Service.Load.
const (
	SourceTopic = "topic"
	SourceImage = "image"
	SourceClear = "clear"
)

// ErrInvalidSource is returned for load requests naming no known source.
var ErrInvalidSource = errors.New("unknown load source")

// QuestionSource builds ready question sets.
type QuestionSource interface {
	FromTopic(ctx context.Context, topic string, n int) (quiz.QuestionSet, error)
	FromImage(ctx context.Context, req question.GenerateRequest) (quiz.QuestionSet, error)
}

// Broadcaster pushes messages to the clients watching a session.
type Broadcaster interface {
	Broadcast(sessionID uuid.UUID, msg ws.Message) error
}

// LoadRequest selects the question source for a session.
type LoadRequest struct {
	Source       string `json:"source"`
	Topic        string `json:"topic,omitempty"`
	Count        int    `json:"count,omitempty"`
	ImageDataURL string `json:"image_data_url,omitempty"`
}

// Created is returned when a session is opened.
type Created struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	View
}

// AnswerResult reports one accepted answer.
type AnswerResult struct {
	Answered quiz.Answered `json:"answered"`
	Stats    quiz.Stats    `json:"stats"`
}

// Service drives quiz sessions on behalf of API clients.
type Service struct {
	registry  *Registry
	questions QuestionSource
	tokens    *jwt.Manager
	hub       Broadcaster
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(registry *Registry, questions QuestionSource, tokens *jwt.Manager, hub Broadcaster, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		registry:  registry,
		questions: questions,
		tokens:    tokens,
		hub:       hub,
		metrics:   m,
		logger:    logger.With().Str("component", "session_service").Logger(),
	}
}

// Create opens an empty session and issues its token.
func (s *Service) Create(_ context.Context) (Created, error) {
	id := uuid.New()
	token, expires, err := s.tokens.Issue(id)
	if err != nil {
		return Created{}, fmt.Errorf("issue session token: %w", err)
	}

	sess := quiz.NewSession(s.observer(id))
	s.registry.Add(id, sess)
	s.logger.Info().Str("session_id", id.String()).Msg("session created")

	return Created{Token: token, ExpiresAt: expires, View: buildView(id, sess)}, nil
}

// Authorize checks that token grants access to id.
func (s *Service) Authorize(token string, id uuid.UUID) error {
	return s.tokens.Authorize(token, id)
}

// Exists reports whether id is a live session.
func (s *Service) Exists(id uuid.UUID) bool {
	return s.registry.Has(id)
}

// Load builds a question set from req and replaces the session content with
// it. Building happens outside the session lock; if it fails the session is
// left as it was.
func (s *Service) Load(ctx context.Context, id uuid.UUID, req LoadRequest) (View, error) {
	if !s.registry.Has(id) {
		return View{}, ErrNotFound
	}

	var set quiz.QuestionSet
	source := strings.ToLower(strings.TrimSpace(req.Source))
	switch source {
	case SourceTopic:
		qs, err := s.questions.FromTopic(ctx, req.Topic, req.Count)
		if err != nil {
			return View{}, err
		}
		set = qs
	case SourceImage:
		qs, err := s.questions.FromImage(ctx, question.GenerateRequest{
			ImageDataURL: req.ImageDataURL,
			Topic:        req.Topic,
			Count:        req.Count,
		})
		if err != nil {
			return View{}, err
		}
		set = qs
	case SourceClear:
		set = quiz.QuestionSet{}
	default:
		return View{}, fmt.Errorf("%w: %q", ErrInvalidSource, req.Source)
	}

	var view View
	err := s.registry.With(id, func(sess *quiz.Session) error {
		sess.Load(set)
		view = buildView(id, sess)
		return nil
	})
	if err != nil {
		return View{}, err
	}

	s.metrics.SetLoaded(source)
	s.publish(id, ws.TypeSessionLoaded, view)
	s.logger.Info().Str("session_id", id.String()).Str("source", source).Int("questions", len(set)).Msg("question set loaded")
	return view, nil
}

// Get returns the current view of id.
func (s *Service) Get(_ context.Context, id uuid.UUID) (View, error) {
	var view View
	err := s.registry.With(id, func(sess *quiz.Session) error {
		view = buildView(id, sess)
		return nil
	})
	return view, err
}

// Answer records option for question i. Engine rejections are returned as
// the quiz package's sentinel errors.
func (s *Service) Answer(_ context.Context, id uuid.UUID, i, option int) (AnswerResult, error) {
	var res AnswerResult
	err := s.registry.With(id, func(sess *quiz.Session) error {
		answered, err := sess.Answer(i, option)
		if err != nil {
			return err
		}
		res = AnswerResult{Answered: answered, Stats: sess.Stats()}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.metrics.AnswerRejected()
		}
		return AnswerResult{}, err
	}
	s.metrics.AnswerRecorded(res.Answered.IsCorrect)
	return res, nil
}

// Reset clears every answer in id, keeping questions and option order.
func (s *Service) Reset(_ context.Context, id uuid.UUID) (quiz.Stats, error) {
	var stats quiz.Stats
	err := s.registry.With(id, func(sess *quiz.Session) error {
		if err := sess.Reset(); err != nil {
			return err
		}
		stats = sess.Stats()
		return nil
	})
	return stats, err
}

// observer forwards engine notifications to the clients watching id.
func (s *Service) observer(id uuid.UUID) quiz.Observer {
	return quiz.ObserverFuncs{
		OnAnswered: func(a quiz.Answered) {
			s.publish(id, ws.TypeQuestionAnswered, answeredPayload(a))
		},
		OnStats: func(st quiz.Stats) {
			s.publish(id, ws.TypeStats, statsPayload(st))
		},
	}
}

func (s *Service) publish(id uuid.UUID, typ string, payload any) {
	if s.hub == nil {
		return
	}
	msg, err := ws.NewMessage(typ, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("type", typ).Msg("encode broadcast")
		return
	}
	_ = s.hub.Broadcast(id, msg)
}
