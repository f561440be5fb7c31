package question

import (
	"context"
	"errors"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// Count limits for topic picks and generated sets.
const (
	MinCount             = 5
	MaxCount             = 30
	DefaultTopicCount    = 30
	DefaultGenerateCount = 10
)

var (
	// ErrNoValidQuestions means a generated payload held nothing that survived normalization.
	ErrNoValidQuestions = errors.New("generator returned no valid questions")
	// ErrGeneratorUnavailable is returned when no generation endpoint is configured.
	ErrGeneratorUnavailable = errors.New("question generator unavailable")
)

// Topic is one named group in a topic bank.
type Topic struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopicBank is a pre-authored question store grouped by topic.
type TopicBank interface {
	Topics(ctx context.Context) ([]Topic, error)
	Questions(ctx context.Context, topic string) ([]quiz.RawQuestion, error)
}

// GenerateRequest asks a generation service for questions about an image.
type GenerateRequest struct {
	ImageDataURL string
	Topic        string
	Count        int
}

// Generator produces raw question candidates from an image.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]quiz.RawQuestion, error)
}

// SetCache stores normalized generated sets. A miss returns (nil, nil).
type SetCache interface {
	Get(ctx context.Context, req GenerateRequest) (quiz.QuestionSet, error)
	Set(ctx context.Context, req GenerateRequest, qs quiz.QuestionSet) error
}

// ClampTopicCount bounds a requested topic pick to [MinCount, MaxCount];
// zero or negative selects DefaultTopicCount.
func ClampTopicCount(n int) int {
	if n <= 0 {
		return DefaultTopicCount
	}
	return clamp(n)
}

// ClampGenerateCount bounds a generation request; zero or negative selects
// DefaultGenerateCount.
func ClampGenerateCount(n int) int {
	if n <= 0 {
		return DefaultGenerateCount
	}
	return clamp(n)
}

func clamp(n int) int {
	return min(max(n, MinCount), MaxCount)
}
