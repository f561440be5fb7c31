package quiz

// Observer receives session notifications. Implementations must not call back
// into the session that notified them.
type Observer interface {
	QuestionAnswered(Answered)
	StatsChanged(Stats)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped.
type ObserverFuncs struct {
	OnAnswered func(Answered)
	OnStats    func(Stats)
}

func (f ObserverFuncs) QuestionAnswered(a Answered) {
	if f.OnAnswered != nil {
		f.OnAnswered(a)
	}
}

func (f ObserverFuncs) StatsChanged(s Stats) {
	if f.OnStats != nil {
		f.OnStats(s)
	}
}

// Session holds one question set and its index-aligned answer states.
// Each question moves Unanswered -> Locked exactly once until Reset.
// A Session is not safe for concurrent use.
type Session struct {
	questions QuestionSet
	answers   []AnswerState
	observers []Observer
}

// NewSession returns an empty session. Answer on it reports ErrEmptySession.
func NewSession(observers ...Observer) *Session {
	return &Session{
		questions: QuestionSet{},
		answers:   []AnswerState{},
		observers: observers,
	}
}

// Load replaces the question set and discards every prior answer.
// Loading an empty set clears the session.
func (s *Session) Load(qs QuestionSet) {
	s.questions = qs.Clone()
	if s.questions == nil {
		s.questions = QuestionSet{}
	}
	s.answers = make([]AnswerState, len(s.questions))
	s.notifyStats()
}

// Answer records option as the answer to question i and locks it.
// The first answer wins; later calls for the same question return
// ErrAlreadyAnswered and change nothing.
func (s *Session) Answer(i, option int) (Answered, error) {
	if len(s.questions) == 0 {
		return Answered{}, ErrEmptySession
	}
	if i < 0 || i >= len(s.questions) {
		return Answered{}, ErrQuestionOutOfRange
	}
	if option < 0 || option >= OptionCount {
		return Answered{}, ErrOptionOutOfRange
	}
	if s.answers[i].Locked {
		return Answered{}, ErrAlreadyAnswered
	}

	selected := option
	s.answers[i] = AnswerState{Selected: &selected, Locked: true}

	correct := s.questions[i].CorrectIndex
	evt := Answered{
		Index:        i,
		Selected:     option,
		CorrectIndex: correct,
		IsCorrect:    option == correct,
	}
	for _, o := range s.observers {
		o.QuestionAnswered(evt)
	}
	s.notifyStats()
	return evt, nil
}

// Reset clears every answer while keeping the same questions in the same
// option order. It returns ErrNothingToReset for an empty session.
func (s *Session) Reset() error {
	if len(s.questions) == 0 {
		return ErrNothingToReset
	}
	s.answers = make([]AnswerState, len(s.questions))
	s.notifyStats()
	return nil
}

// Len reports the number of loaded questions.
func (s *Session) Len() int {
	return len(s.questions)
}

// Empty reports whether the session has zero questions.
func (s *Session) Empty() bool {
	return len(s.questions) == 0
}

// Question returns question i.
func (s *Session) Question(i int) (Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[i], true
}

// State returns the answer state of question i.
func (s *Session) State(i int) (AnswerState, bool) {
	if i < 0 || i >= len(s.answers) {
		return AnswerState{}, false
	}
	return s.answers[i], true
}

// Questions returns a copy of the loaded set.
func (s *Session) Questions() QuestionSet {
	return s.questions.Clone()
}

// Answers returns a copy of the answer states.
func (s *Session) Answers() []AnswerState {
	out := make([]AnswerState, len(s.answers))
	copy(out, s.answers)
	return out
}

// Stats scores the session in its current state.
func (s *Session) Stats() Stats {
	return ScoreAnswers(s.questions, s.answers)
}

func (s *Session) notifyStats() {
	if len(s.observers) == 0 {
		return
	}
	stats := s.Stats()
	for _, o := range s.observers {
		o.StatsChanged(stats)
	}
}
