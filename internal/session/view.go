package session

import (
	"github.com/google/uuid"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
	ws "github.com/w9840102-lang/mcqforge/pkg/http/ws"
)

// View is the client-facing snapshot of a session. The correct option of a
// question is only disclosed once that question is answered.
type View struct {
	SessionID uuid.UUID      `json:"session_id"`
	Questions []QuestionView `json:"questions"`
	Stats     quiz.Stats     `json:"stats"`
}

type QuestionView struct {
	Index   int                      `json:"index"`
	Text    string                   `json:"q"`
	Options [quiz.OptionCount]string `json:"options"`
	Answer  *AnswerView              `json:"answer,omitempty"`
}

type AnswerView struct {
	Selected     int  `json:"selected"`
	CorrectIndex int  `json:"correct_index"`
	IsCorrect    bool `json:"is_correct"`
}

func buildView(id uuid.UUID, s *quiz.Session) View {
	qs := s.Questions()
	answers := s.Answers()
	v := View{
		SessionID: id,
		Questions: make([]QuestionView, len(qs)),
		Stats:     s.Stats(),
	}
	for i, q := range qs {
		qv := QuestionView{Index: i, Text: q.Text, Options: q.Options}
		if a := answers[i]; a.Locked && a.Selected != nil {
			qv.Answer = &AnswerView{
				Selected:     *a.Selected,
				CorrectIndex: q.CorrectIndex,
				IsCorrect:    *a.Selected == q.CorrectIndex,
			}
		}
		v.Questions[i] = qv
	}
	return v
}

func answeredPayload(a quiz.Answered) ws.QuestionAnsweredPayload {
	return ws.QuestionAnsweredPayload{
		Index:        a.Index,
		Selected:     a.Selected,
		CorrectIndex: a.CorrectIndex,
		IsCorrect:    a.IsCorrect,
	}
}

func statsPayload(s quiz.Stats) ws.StatsPayload {
	return ws.StatsPayload{
		Total:           s.Total,
		Answered:        s.Answered,
		Correct:         s.Correct,
		AccuracyPercent: s.AccuracyPercent,
	}
}
