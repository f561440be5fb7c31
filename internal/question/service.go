package question

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/metrics"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// Service turns a source (topic bank or generator) into a ready question set:
// source -> normalize -> shuffle.
type Service struct {
	bank      TopicBank
	generator Generator
	cache     SetCache
	shuffler  *quiz.Shuffler
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

type ServiceOptions struct {
	// Shuffler defaults to quiz.DefaultShuffler.
	Shuffler *quiz.Shuffler
	Metrics  *metrics.Metrics
}

// NewService wires the sources. generator and cache may be nil.
func NewService(bank TopicBank, generator Generator, cache SetCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	shuffler := opts.Shuffler
	if shuffler == nil {
		shuffler = quiz.DefaultShuffler()
	}
	return &Service{
		bank:      bank,
		generator: generator,
		cache:     cache,
		shuffler:  shuffler,
		metrics:   opts.Metrics,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

// Topics lists bank topics whose name contains filter (case-insensitive),
// sorted A-Z.
func (s *Service) Topics(ctx context.Context, filter string) ([]Topic, error) {
	all, err := s.bank.Topics(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]Topic, 0, len(all))
	for _, t := range all {
		if needle == "" || strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// FromTopic picks up to ClampTopicCount(n) random questions from topic. Both
// option order and question order are shuffled. An unknown topic yields an
// empty set.
func (s *Service) FromTopic(ctx context.Context, topic string, n int) (quiz.QuestionSet, error) {
	raw, err := s.bank.Questions(ctx, topic)
	if err != nil {
		return nil, err
	}
	want := ClampTopicCount(n)
	picked := quiz.ShuffleSlice(s.shuffler, raw)
	if len(picked) > want {
		picked = picked[:want]
	}

	set := quiz.Normalize(picked)
	set = s.shuffler.ShuffleSet(s.shuffler.ShuffleOptions(set))
	s.logger.Debug().Str("topic", topic).Int("requested", want).Int("available", len(raw)).Int("picked", len(set)).Msg("topic set built")
	return set, nil
}

// FromImage asks the generator for questions about the image. Option order is
// shuffled; question order is kept as generated. Sets that normalize to
// nothing fail with ErrNoValidQuestions.
func (s *Service) FromImage(ctx context.Context, req GenerateRequest) (quiz.QuestionSet, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	req.Count = ClampGenerateCount(req.Count)
	req.Topic = strings.TrimSpace(req.Topic)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, req)
		if err != nil {
			s.logger.Warn().Err(err).Msg("generation cache read failed")
		} else if len(cached) > 0 {
			s.metrics.Generation("cache_hit", 0)
			return s.shuffler.ShuffleOptions(cached), nil
		}
	}

	started := time.Now()
	raw, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.metrics.Generation("error", time.Since(started))
		if errors.Is(err, ErrGeneratorUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("generate from image: %w", err)
	}

	set := quiz.Normalize(raw)
	if len(set) == 0 {
		s.metrics.Generation("invalid", time.Since(started))
		s.logger.Warn().Int("records", len(raw)).Msg("generated set has no valid questions")
		return nil, ErrNoValidQuestions
	}
	s.metrics.Generation("ok", time.Since(started))

	if s.cache != nil {
		if err := s.cache.Set(ctx, req, set); err != nil {
			s.logger.Warn().Err(err).Msg("generation cache write failed")
		}
	}
	return s.shuffler.ShuffleOptions(set), nil
}
