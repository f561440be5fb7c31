package question

import (
	"context"
	"fmt"

	"github.com/w9840102-lang/mcqforge/internal/db/repository"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// PostgresBank serves topics stored in Postgres.
type PostgresBank struct {
	repo *repository.QuestionRepository
}

var _ TopicBank = (*PostgresBank)(nil)

func NewPostgresBank(repo *repository.QuestionRepository) *PostgresBank {
	return &PostgresBank{repo: repo}
}

func (b *PostgresBank) Topics(ctx context.Context) ([]Topic, error) {
	rows, err := b.repo.TopicSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	topics := make([]Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, Topic{Name: row.Name, Count: int(row.QuestionCount)})
	}
	return topics, nil
}

// Questions returns stored rows as raw records so they pass through the same
// normalization as every other source.
func (b *PostgresBank) Questions(ctx context.Context, topic string) ([]quiz.RawQuestion, error) {
	rows, err := b.repo.QuestionsByTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("list questions for %q: %w", topic, err)
	}
	raw := make([]quiz.RawQuestion, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, quiz.RawQuestion{
			Q:       row.Prompt,
			Options: row.Options,
			Ans:     int(row.AnswerIndex),
		})
	}
	return raw, nil
}
