package quiz

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// Letters labels option positions for display.
var Letters = [OptionCount]string{"A", "B", "C", "D"}

// Question is the canonical MCQ shape produced by Normalize.
type Question struct {
	Text         string              `json:"q"`
	Options      [OptionCount]string `json:"options"`
	CorrectIndex int                 `json:"ans"`
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// QuestionSet is an ordered set of questions presented in one attempt.
type QuestionSet []Question

// Clone returns a copy that shares no backing array with qs.
func (qs QuestionSet) Clone() QuestionSet {
	if qs == nil {
		return nil
	}
	out := make(QuestionSet, len(qs))
	copy(out, qs)
	return out
}

// RawQuestion is an untrusted record as received from a bank or generator.
// Field values are whatever the decoder produced (string, float64, int, []any, nil, ...).
type RawQuestion struct {
	Q       any `json:"q" yaml:"q"`
	Options any `json:"options" yaml:"options"`
	Ans     any `json:"ans" yaml:"ans"`
}

// AnswerState tracks the selection for one question.
type AnswerState struct {
	Selected *int `json:"selected"`
	Locked   bool `json:"locked"`
}

// Answered is emitted once per successful Answer call.
type Answered struct {
	Index        int  `json:"index"`
	Selected     int  `json:"selected"`
	CorrectIndex int  `json:"correct_index"`
	IsCorrect    bool `json:"is_correct"`
}

// Stats aggregates the current attempt.
type Stats struct {
	Total           int `json:"total"`
	Answered        int `json:"answered"`
	Correct         int `json:"correct"`
	AccuracyPercent int `json:"accuracy_percent"`
}
