package queries

import "github.com/jackc/pgx/v5/pgtype"

type Topic struct {
	TopicID   int64              `json:"topic_id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type BankQuestion struct {
	QuestionID  pgtype.UUID        `json:"question_id"`
	TopicID     int64              `json:"topic_id"`
	Prompt      string             `json:"prompt"`
	Options     []string           `json:"options"`
	AnswerIndex int16              `json:"answer_index"`
	Source      string             `json:"source"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}
