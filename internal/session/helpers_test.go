package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/auth/jwt"
	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

// sampleSet returns n questions whose correct option is i%4.
func sampleSet(n int) quiz.QuestionSet {
	qs := make(quiz.QuestionSet, n)
	for i := range qs {
		qs[i] = quiz.Question{
			Text:         fmt.Sprintf("Question %d?", i+1),
			Options:      [4]string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
		}
	}
	return qs
}

type stubSource struct {
	topicSet  quiz.QuestionSet
	imageSet  quiz.QuestionSet
	err       error
	lastTopic string
	lastImage question.GenerateRequest
}

func (s *stubSource) FromTopic(_ context.Context, topic string, _ int) (quiz.QuestionSet, error) {
	s.lastTopic = topic
	if s.err != nil {
		return nil, s.err
	}
	return s.topicSet, nil
}

func (s *stubSource) FromImage(_ context.Context, req question.GenerateRequest) (quiz.QuestionSet, error) {
	s.lastImage = req
	if s.err != nil {
		return nil, s.err
	}
	return s.imageSet, nil
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (b *recordingBroadcaster) Broadcast(_ uuid.UUID, msg ws.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.msgs))
	for i, m := range b.msgs {
		out[i] = m.Type
	}
	return out
}

func newTestService(t *testing.T, src QuestionSource, hub Broadcaster) *Service {
	t.Helper()
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour})
	registry := NewRegistry(time.Hour, nil, zerolog.Nop())
	return NewService(registry, src, tokens, hub, nil, zerolog.Nop())
}
