package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

func TestServiceCreateIssuesTokenForEmptySession(t *testing.T) {
	svc := newTestService(t, &stubSource{}, nil)

	created, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)
	assert.Empty(t, created.Questions)
	assert.Equal(t, quiz.Stats{}, created.Stats)

	assert.NoError(t, svc.Authorize(created.Token, created.SessionID))
	assert.Error(t, svc.Authorize(created.Token, uuid.New()))
	assert.True(t, svc.Exists(created.SessionID))
}

func TestServiceLoadSources(t *testing.T) {
	src := &stubSource{topicSet: sampleSet(5), imageSet: sampleSet(3)}
	hub := &recordingBroadcaster{}
	svc := newTestService(t, src, hub)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	id := created.SessionID

	view, err := svc.Load(ctx, id, LoadRequest{Source: "Topic", Topic: "science"})
	require.NoError(t, err)
	assert.Len(t, view.Questions, 5)
	assert.Equal(t, "science", src.lastTopic)
	assert.Equal(t, quiz.Stats{Total: 5}, view.Stats)
	assert.Contains(t, hub.types(), ws.TypeSessionLoaded)

	view, err = svc.Load(ctx, id, LoadRequest{Source: SourceImage, ImageDataURL: "data:image/png;base64,AAAA", Topic: "maths", Count: 3})
	require.NoError(t, err)
	assert.Len(t, view.Questions, 3)
	assert.Equal(t, question.GenerateRequest{ImageDataURL: "data:image/png;base64,AAAA", Topic: "maths", Count: 3}, src.lastImage)

	view, err = svc.Load(ctx, id, LoadRequest{Source: SourceClear})
	require.NoError(t, err)
	assert.Empty(t, view.Questions)

	_, err = svc.Load(ctx, id, LoadRequest{Source: "webcam"})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = svc.Load(ctx, uuid.New(), LoadRequest{Source: SourceClear})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceLoadFailureKeepsSession(t *testing.T) {
	src := &stubSource{topicSet: sampleSet(4)}
	svc := newTestService(t, src, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	id := created.SessionID

	_, err = svc.Load(ctx, id, LoadRequest{Source: SourceTopic, Topic: "t"})
	require.NoError(t, err)
	_, err = svc.Answer(ctx, id, 0, 0)
	require.NoError(t, err)

	src.err = question.ErrNoValidQuestions
	_, err = svc.Load(ctx, id, LoadRequest{Source: SourceImage, ImageDataURL: "data:image/png;base64,AA"})
	assert.ErrorIs(t, err, question.ErrNoValidQuestions)

	view, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, view.Questions, 4)
	assert.Equal(t, quiz.Stats{Total: 4, Answered: 1, Correct: 1, AccuracyPercent: 100}, view.Stats)
}

func TestServiceAnswerFlow(t *testing.T) {
	hub := &recordingBroadcaster{}
	svc := newTestService(t, &stubSource{topicSet: sampleSet(4)}, hub)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	id := created.SessionID

	_, err = svc.Answer(ctx, id, 0, 0)
	assert.ErrorIs(t, err, quiz.ErrEmptySession)

	_, err = svc.Load(ctx, id, LoadRequest{Source: SourceTopic, Topic: "t"})
	require.NoError(t, err)

	res, err := svc.Answer(ctx, id, 1, 1)
	require.NoError(t, err)
	assert.True(t, res.Answered.IsCorrect)
	assert.Equal(t, quiz.Stats{Total: 4, Answered: 1, Correct: 1, AccuracyPercent: 100}, res.Stats)

	res, err = svc.Answer(ctx, id, 2, 0)
	require.NoError(t, err)
	assert.False(t, res.Answered.IsCorrect)
	assert.Equal(t, 2, res.Answered.CorrectIndex)
	assert.Equal(t, 50, res.Stats.AccuracyPercent)

	_, err = svc.Answer(ctx, id, 1, 3)
	assert.ErrorIs(t, err, quiz.ErrAlreadyAnswered)
	_, err = svc.Answer(ctx, id, 9, 0)
	assert.ErrorIs(t, err, quiz.ErrQuestionOutOfRange)
	_, err = svc.Answer(ctx, id, 0, 4)
	assert.ErrorIs(t, err, quiz.ErrOptionOutOfRange)

	view, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, view.Questions[1].Answer)
	assert.Equal(t, 1, view.Questions[1].Answer.Selected)
	assert.Nil(t, view.Questions[0].Answer, "unanswered questions do not reveal the answer")

	assert.Contains(t, hub.types(), ws.TypeQuestionAnswered)
	assert.Contains(t, hub.types(), ws.TypeStats)
}

func TestServiceReset(t *testing.T) {
	svc := newTestService(t, &stubSource{topicSet: sampleSet(3)}, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	id := created.SessionID

	_, err = svc.Reset(ctx, id)
	assert.ErrorIs(t, err, quiz.ErrNothingToReset)

	before, err := svc.Load(ctx, id, LoadRequest{Source: SourceTopic, Topic: "t"})
	require.NoError(t, err)
	_, err = svc.Answer(ctx, id, 0, 0)
	require.NoError(t, err)

	stats, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, quiz.Stats{Total: 3}, stats)

	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	for i := range before.Questions {
		assert.Equal(t, before.Questions[i].Options, after.Questions[i].Options)
		assert.Nil(t, after.Questions[i].Answer)
	}

	_, err = svc.Answer(ctx, id, 0, 1)
	assert.NoError(t, err, "answers are accepted again after reset")
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ErrNotFound, 404, "session_not_found"},
		{ErrInvalidSource, 400, "invalid_source"},
		{quiz.ErrEmptySession, 409, "empty_session"},
		{quiz.ErrQuestionOutOfRange, 409, "question_out_of_range"},
		{quiz.ErrOptionOutOfRange, 409, "option_out_of_range"},
		{quiz.ErrAlreadyAnswered, 409, "already_answered"},
		{quiz.ErrNothingToReset, 409, "nothing_to_reset"},
		{question.ErrNoValidQuestions, 422, "invalid_format"},
		{question.ErrGeneratorUnavailable, 503, "generator_unavailable"},
		{context.DeadlineExceeded, 504, "upstream_error"},
		{errors.New("connection refused"), 502, "upstream_error"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			status, code, msg := ErrorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
