// Package bankimport reads question banks from YAML, XLSX and OpenTDB and
// writes them into the topic bank.
package bankimport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/question/external"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// TopicRecords are the raw, not yet normalized records of one topic.
type TopicRecords struct {
	Name    string
	Records []quiz.RawQuestion
}

// ReadYAML reads a bank document in the same layout the file bank serves.
func ReadYAML(r io.Reader) ([]TopicRecords, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	doc, err := question.ParseBank(data)
	if err != nil {
		return nil, err
	}
	return merge(fromDocument(doc)), nil
}

func fromDocument(doc question.BankDocument) []TopicRecords {
	out := make([]TopicRecords, 0, len(doc.Topics))
	for _, t := range doc.Topics {
		out = append(out, TopicRecords{Name: t.Name, Records: t.Questions})
	}
	return out
}

// WriteYAML renders topics as a bank document loadable by the file bank.
// Only records that survive normalization are written.
func WriteYAML(w io.Writer, topics []TopicRecords) error {
	doc := question.BankDocument{Topics: make([]question.BankTopic, 0, len(topics))}
	for _, t := range merge(topics) {
		set := quiz.Normalize(t.Records)
		qs := make([]quiz.RawQuestion, len(set))
		for i, q := range set {
			qs[i] = quiz.RawQuestion{Q: q.Text, Options: q.Options[:], Ans: q.CorrectIndex}
		}
		doc.Topics = append(doc.Topics, question.BankTopic{Name: t.Name, Questions: qs})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// OpenTDBFetcher is satisfied by external.OpenTDBClient.
type OpenTDBFetcher interface {
	Fetch(ctx context.Context, q external.OpenTDBQuery) ([]external.OpenTDBQuestion, error)
}

// FromOpenTDB fetches one batch of multiple-choice questions and files them
// under topic.
func FromOpenTDB(ctx context.Context, f OpenTDBFetcher, topic string, q external.OpenTDBQuery) (TopicRecords, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return TopicRecords{}, fmt.Errorf("opentdb import needs a topic name")
	}
	items, err := f.Fetch(ctx, q)
	if err != nil {
		return TopicRecords{}, err
	}
	return TopicRecords{Name: topic, Records: external.ToRaw(items)}, nil
}

// merge folds topics whose names differ only by case or surrounding space,
// keeping the first spelling and the input order.
func merge(topics []TopicRecords) []TopicRecords {
	index := map[string]int{}
	var out []TopicRecords
	for _, t := range topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			out[i].Records = append(out[i].Records, t.Records...)
			continue
		}
		index[key] = len(out)
		out = append(out, TopicRecords{Name: name, Records: append([]quiz.RawQuestion(nil), t.Records...)})
	}
	return out
}
