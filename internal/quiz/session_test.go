package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet(n int) QuestionSet {
	set := make(QuestionSet, n)
	for i := range set {
		set[i] = Question{
			Text:         string(rune('a'+i)) + "?",
			Options:      [4]string{"w", "x", "y", "z"},
			CorrectIndex: i % OptionCount,
		}
	}
	return set
}

type recorder struct {
	answered []Answered
	stats    []Stats
}

func (r *recorder) QuestionAnswered(a Answered) { r.answered = append(r.answered, a) }
func (r *recorder) StatsChanged(s Stats)        { r.stats = append(r.stats, s) }

func TestAnswerFirstWins(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(3))

	_, err := s.Answer(0, 2)
	require.NoError(t, err)

	_, err = s.Answer(0, 0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	state, ok := s.State(0)
	require.True(t, ok)
	require.NotNil(t, state.Selected)
	assert.Equal(t, 2, *state.Selected)
	assert.True(t, state.Locked)
}

func TestAnswerReportsOutcome(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(3))

	evt, err := s.Answer(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Answered{Index: 1, Selected: 1, CorrectIndex: 1, IsCorrect: true}, evt)

	evt, err = s.Answer(2, 0)
	require.NoError(t, err)
	assert.Equal(t, Answered{Index: 2, Selected: 0, CorrectIndex: 2, IsCorrect: false}, evt)
}

func TestAnswerErrors(t *testing.T) {
	tests := []struct {
		name     string
		load     int
		question int
		option   int
		want     error
	}{
		{name: "empty session", load: 0, question: 0, option: 0, want: ErrEmptySession},
		{name: "negative question", load: 2, question: -1, option: 0, want: ErrQuestionOutOfRange},
		{name: "question past end", load: 2, question: 2, option: 0, want: ErrQuestionOutOfRange},
		{name: "negative option", load: 2, question: 0, option: -1, want: ErrOptionOutOfRange},
		{name: "option past end", load: 2, question: 0, option: 4, want: ErrOptionOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			s := NewSession(rec)
			s.Load(sampleSet(tc.load))
			before := s.Answers()

			_, err := s.Answer(tc.question, tc.option)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, s.Answers())
			assert.Empty(t, rec.answered)
		})
	}
}

func TestLockedAnswersNeverChange(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(4))

	for i := 0; i < 4; i++ {
		_, err := s.Answer(i, 3-i)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		for opt := 0; opt < OptionCount; opt++ {
			_, err := s.Answer(i, opt)
			assert.ErrorIs(t, err, ErrAlreadyAnswered)
		}
		state, _ := s.State(i)
		assert.Equal(t, 3-i, *state.Selected)
	}
}

func TestObserversNotifiedInOrder(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec)

	s.Load(sampleSet(2))
	require.Len(t, rec.stats, 1)
	assert.Equal(t, Stats{Total: 2}, rec.stats[0])

	_, err := s.Answer(0, 0)
	require.NoError(t, err)
	require.Len(t, rec.answered, 1)
	require.Len(t, rec.stats, 2)
	assert.Equal(t, Stats{Total: 2, Answered: 1, Correct: 1, AccuracyPercent: 100}, rec.stats[1])

	_, err = s.Answer(0, 1)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.Len(t, rec.answered, 1)
	assert.Len(t, rec.stats, 2)
}

func TestObserverFuncsSkipsNilFields(t *testing.T) {
	var got []Stats
	s := NewSession(ObserverFuncs{OnStats: func(st Stats) { got = append(got, st) }})
	s.Load(sampleSet(1))

	assert.NotPanics(t, func() {
		_, err := s.Answer(0, 0)
		require.NoError(t, err)
	})
	assert.Len(t, got, 2)
}

func TestLoadReplacesPriorState(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(3))
	_, err := s.Answer(0, 0)
	require.NoError(t, err)

	s.Load(sampleSet(2))
	assert.Equal(t, 2, s.Len())
	for _, a := range s.Answers() {
		assert.Nil(t, a.Selected)
		assert.False(t, a.Locked)
	}
	assert.Equal(t, Stats{Total: 2}, s.Stats())
}

func TestLoadCopiesInput(t *testing.T) {
	set := sampleSet(2)
	s := NewSession()
	s.Load(set)

	set[0].Text = "mutated"
	q, ok := s.Question(0)
	require.True(t, ok)
	assert.Equal(t, "a?", q.Text)

	out := s.Questions()
	out[1].Text = "mutated"
	q, _ = s.Question(1)
	assert.Equal(t, "b?", q.Text)
}

func TestLoadEmptyClears(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(2))
	s.Load(nil)

	assert.True(t, s.Empty())
	assert.Equal(t, Stats{}, s.Stats())
	_, err := s.Answer(0, 0)
	assert.ErrorIs(t, err, ErrEmptySession)
}

func TestResetUnlocksAndKeepsQuestions(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(3))
	before := s.Questions()

	_, err := s.Answer(0, 1)
	require.NoError(t, err)
	_, err = s.Answer(2, 2)
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	assert.Equal(t, before, s.Questions())
	assert.Equal(t, Stats{Total: 3}, s.Stats())

	_, err = s.Answer(0, 3)
	assert.NoError(t, err)
}

func TestResetIsIdempotent(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(2))
	_, err := s.Answer(1, 1)
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	first := s.Answers()
	require.NoError(t, s.Reset())
	assert.Equal(t, first, s.Answers())
}

func TestResetEmptySession(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec)

	err := s.Reset()
	assert.ErrorIs(t, err, ErrNothingToReset)
	assert.True(t, s.Empty())
	assert.Empty(t, rec.stats)
}

func TestQuestionAndStateBounds(t *testing.T) {
	s := NewSession()
	s.Load(sampleSet(1))

	_, ok := s.Question(1)
	assert.False(t, ok)
	_, ok = s.Question(-1)
	assert.False(t, ok)
	_, ok = s.State(5)
	assert.False(t, ok)
}
