package queries

import "context"

const listTopicSummaries = `
SELECT t.name, COUNT(q.question_id)::bigint AS question_count
FROM topics t
LEFT JOIN bank_questions q ON q.topic_id = t.topic_id
GROUP BY t.topic_id, t.name
ORDER BY t.name
`

type ListTopicSummariesRow struct {
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}

func (q *Queries) ListTopicSummaries(ctx context.Context) ([]ListTopicSummariesRow, error) {
	rows, err := q.db.Query(ctx, listTopicSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTopicSummariesRow
	for rows.Next() {
		var i ListTopicSummariesRow
		if err := rows.Scan(&i.Name, &i.QuestionCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertTopic = `
INSERT INTO topics (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING topic_id, name, created_at
`

func (q *Queries) UpsertTopic(ctx context.Context, name string) (Topic, error) {
	row := q.db.QueryRow(ctx, upsertTopic, name)
	var i Topic
	err := row.Scan(&i.TopicID, &i.Name, &i.CreatedAt)
	return i, err
}
