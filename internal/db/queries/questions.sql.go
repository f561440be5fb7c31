package queries

import "context"

const listQuestionsByTopic = `
SELECT q.question_id, q.topic_id, q.prompt, q.options, q.answer_index, q.source, q.created_at
FROM bank_questions q
JOIN topics t ON t.topic_id = q.topic_id
WHERE lower(t.name) = lower($1)
ORDER BY q.created_at, q.question_id
`

func (q *Queries) ListQuestionsByTopic(ctx context.Context, topic string) ([]BankQuestion, error) {
	rows, err := q.db.Query(ctx, listQuestionsByTopic, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankQuestion
	for rows.Next() {
		var i BankQuestion
		if err := rows.Scan(
			&i.QuestionID,
			&i.TopicID,
			&i.Prompt,
			&i.Options,
			&i.AnswerIndex,
			&i.Source,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertQuestion = `
INSERT INTO bank_questions (topic_id, prompt, options, answer_index, source)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (topic_id, prompt) DO NOTHING
`

type InsertQuestionParams struct {
	TopicID     int64    `json:"topic_id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int16    `json:"answer_index"`
	Source      string   `json:"source"`
}

// InsertQuestion reports the number of rows written; duplicates of an
// existing prompt within the topic write nothing.
func (q *Queries) InsertQuestion(ctx context.Context, arg InsertQuestionParams) (int64, error) {
	tag, err := q.db.Exec(ctx, insertQuestion,
		arg.TopicID,
		arg.Prompt,
		arg.Options,
		arg.AnswerIndex,
		arg.Source,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
