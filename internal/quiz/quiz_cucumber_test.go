//go:build cucumber

package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// TestQuizEngineScenarios runs the engine feature scenarios.
func TestQuizEngineScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-engine",
		ScenarioInitializer: InitializeQuizEngineScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("..", "..", "features", "quiz_engine.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeQuizEngineScenario wires steps for engine scenarios.
func InitializeQuizEngineScenario(ctx *godog.ScenarioContext) {
	state := &engineScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^raw questions:$`, state.givenRawQuestions)
	ctx.Step(`^I normalize them$`, state.whenNormalize)
	ctx.Step(`^the set has (\d+) questions?$`, state.thenSetSize)
	ctx.Step(`^a session with (\d+) questions$`, state.givenSession)
	ctx.Step(`^an empty session$`, state.givenEmptySession)
	ctx.Step(`^I answer question (\d+) with option (\d+)$`, state.whenAnswer)
	ctx.Step(`^I answer every question correctly$`, state.whenAnswerAllCorrectly)
	ctx.Step(`^I answer question (\d+) incorrectly$`, state.whenAnswerIncorrectly)
	ctx.Step(`^I reset the session$`, state.whenReset)
	ctx.Step(`^the last answer is rejected as "([^"]+)"$`, state.thenRejected)
	ctx.Step(`^the reset is rejected as "([^"]+)"$`, state.thenRejected)
	ctx.Step(`^question (\d+) has option (\d+) selected$`, state.thenSelected)
	ctx.Step(`^the stats are (\d+) total, (\d+) answered, (\d+) correct, (\d+) percent$`, state.thenStats)
	ctx.Step(`^the session has (\d+) questions$`, state.thenSessionSize)
}

type engineScenarioState struct {
	raw     []RawQuestion
	set     QuestionSet
	session *Session
	lastErr error
}

func (s *engineScenarioState) reset() {
	s.raw = nil
	s.set = nil
	s.session = NewSession()
	s.lastErr = nil
}

func (s *engineScenarioState) givenRawQuestions(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 3 {
			return fmt.Errorf("row %d: want 3 cells, got %d", i, len(row.Cells))
		}
		ans, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		opts := strings.Split(row.Cells[1].Value, ",")
		options := make([]any, len(opts))
		for j, o := range opts {
			options[j] = o
		}
		s.raw = append(s.raw, RawQuestion{Q: row.Cells[0].Value, Options: options, Ans: ans})
	}
	return nil
}

func (s *engineScenarioState) whenNormalize() error {
	s.set = Normalize(s.raw)
	return nil
}

func (s *engineScenarioState) thenSetSize(n int) error {
	if len(s.set) != n {
		return fmt.Errorf("set size = %d, want %d", len(s.set), n)
	}
	return nil
}

func (s *engineScenarioState) givenSession(n int) error {
	set := make(QuestionSet, n)
	for i := range set {
		set[i] = Question{Text: fmt.Sprintf("Question %d", i+1), Options: [4]string{"a", "b", "c", "d"}, CorrectIndex: i % OptionCount}
	}
	s.session.Load(set)
	return nil
}

func (s *engineScenarioState) givenEmptySession() error {
	s.session = NewSession()
	return nil
}

func (s *engineScenarioState) whenAnswer(q, opt int) error {
	_, s.lastErr = s.session.Answer(q, opt)
	return nil
}

func (s *engineScenarioState) whenAnswerAllCorrectly() error {
	for i := 0; i < s.session.Len(); i++ {
		q, _ := s.session.Question(i)
		if _, err := s.session.Answer(i, q.CorrectIndex); err != nil {
			return err
		}
	}
	return nil
}

func (s *engineScenarioState) whenAnswerIncorrectly(i int) error {
	q, ok := s.session.Question(i)
	if !ok {
		return fmt.Errorf("no question %d", i)
	}
	_, err := s.session.Answer(i, (q.CorrectIndex+1)%OptionCount)
	return err
}

func (s *engineScenarioState) whenReset() error {
	s.lastErr = s.session.Reset()
	return nil
}

func (s *engineScenarioState) thenRejected(reason string) error {
	want := map[string]error{
		"already answered": ErrAlreadyAnswered,
		"nothing to reset": ErrNothingToReset,
	}[reason]
	if want == nil {
		return fmt.Errorf("unknown rejection %q", reason)
	}
	if !errors.Is(s.lastErr, want) {
		return fmt.Errorf("last error = %v, want %v", s.lastErr, want)
	}
	return nil
}

func (s *engineScenarioState) thenSelected(q, opt int) error {
	state, ok := s.session.State(q)
	if !ok || state.Selected == nil {
		return fmt.Errorf("question %d has no selection", q)
	}
	if *state.Selected != opt {
		return fmt.Errorf("question %d selected %d, want %d", q, *state.Selected, opt)
	}
	return nil
}

func (s *engineScenarioState) thenStats(total, answered, correct, pct int) error {
	want := Stats{Total: total, Answered: answered, Correct: correct, AccuracyPercent: pct}
	if got := s.session.Stats(); got != want {
		return fmt.Errorf("stats = %+v, want %+v", got, want)
	}
	return nil
}

func (s *engineScenarioState) thenSessionSize(n int) error {
	if s.session.Len() != n {
		return fmt.Errorf("session has %d questions, want %d", s.session.Len(), n)
	}
	return nil
}
