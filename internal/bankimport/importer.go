package bankimport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/w9840102-lang/mcqforge/internal/db/repository"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// Store persists normalized questions under a topic.
type Store interface {
	ImportTopic(ctx context.Context, topic string, qs quiz.QuestionSet, source string) (repository.ImportResult, error)
}

// Summary totals one import run.
type Summary struct {
	Topics    int `json:"topics"`
	Read      int `json:"read"`
	Dropped   int `json:"dropped"`
	Inserted  int `json:"inserted"`
	Duplicate int `json:"duplicate"`
}

// Importer normalizes raw records and writes them to a Store.
type Importer struct {
	store  Store
	logger zerolog.Logger
}

func NewImporter(store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logger.With().Str("component", "bank_importer").Logger(),
	}
}

// Import writes every topic. Records the normalizer rejects are counted as
// dropped; the run stops at the first store error.
func (im *Importer) Import(ctx context.Context, topics []TopicRecords, source string) (Summary, error) {
	var sum Summary
	for _, t := range merge(topics) {
		set := quiz.Normalize(t.Records)
		sum.Topics++
		sum.Read += len(t.Records)
		sum.Dropped += len(t.Records) - len(set)

		if len(set) == 0 {
			im.logger.Warn().Str("topic", t.Name).Int("read", len(t.Records)).Msg("topic has no valid questions")
			continue
		}

		res, err := im.store.ImportTopic(ctx, t.Name, set, source)
		sum.Inserted += res.Inserted
		sum.Duplicate += res.Duplicate
		if err != nil {
			return sum, fmt.Errorf("import topic %q: %w", t.Name, err)
		}
		im.logger.Info().
			Str("topic", t.Name).
			Int("inserted", res.Inserted).
			Int("duplicate", res.Duplicate).
			Int("dropped", len(t.Records)-len(set)).
			Msg("topic imported")
	}
	return sum, nil
}
