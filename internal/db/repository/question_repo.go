package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/w9840102-lang/mcqforge/internal/db/queries"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

type questionStore interface {
	ListTopicSummaries(ctx context.Context) ([]queries.ListTopicSummariesRow, error)
	ListQuestionsByTopic(ctx context.Context, topic string) ([]queries.BankQuestion, error)
	UpsertTopic(ctx context.Context, name string) (queries.Topic, error)
	InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (int64, error)
}

// QuestionRepository wraps the topic bank queries.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// TopicSummaries lists every topic with its question count, ordered by name.
func (r *QuestionRepository) TopicSummaries(ctx context.Context) ([]queries.ListTopicSummariesRow, error) {
	return r.store.ListTopicSummaries(ctx)
}

// QuestionsByTopic returns every stored question for topic (case-insensitive).
func (r *QuestionRepository) QuestionsByTopic(ctx context.Context, topic string) ([]queries.BankQuestion, error) {
	return r.store.ListQuestionsByTopic(ctx, strings.TrimSpace(topic))
}

// ImportResult counts what ImportTopic wrote.
type ImportResult struct {
	Inserted  int
	Duplicate int
}

// ImportTopic creates topic if needed and inserts qs under it. Prompts already
// present in the topic are counted as duplicates and left untouched.
func (r *QuestionRepository) ImportTopic(ctx context.Context, topic string, qs quiz.QuestionSet, source string) (ImportResult, error) {
	name := strings.TrimSpace(topic)
	if name == "" {
		return ImportResult{}, fmt.Errorf("import: topic name is empty")
	}
	t, err := r.store.UpsertTopic(ctx, name)
	if err != nil {
		return ImportResult{}, fmt.Errorf("upsert topic %q: %w", name, err)
	}

	var res ImportResult
	for _, q := range qs {
		n, err := r.store.InsertQuestion(ctx, queries.InsertQuestionParams{
			TopicID:     t.TopicID,
			Prompt:      q.Text,
			Options:     q.Options[:],
			AnswerIndex: int16(q.CorrectIndex),
			Source:      source,
		})
		if err != nil {
			return res, fmt.Errorf("insert question %q: %w", q.Text, err)
		}
		if n == 0 {
			res.Duplicate++
			continue
		}
		res.Inserted++
	}
	return res, nil
}
