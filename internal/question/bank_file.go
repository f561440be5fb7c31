package question

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// BankDocument is the YAML layout of a question bank file.
type BankDocument struct {
	Topics []BankTopic `yaml:"topics"`
}

// BankTopic holds the raw records of one topic.
type BankTopic struct {
	Name      string             `yaml:"name"`
	Questions []quiz.RawQuestion `yaml:"questions"`
}

// ParseBank decodes a single YAML bank document.
func ParseBank(data []byte) (BankDocument, error) {
	var doc BankDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return BankDocument{}, nil
		}
		return BankDocument{}, fmt.Errorf("parse bank yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return BankDocument{}, fmt.Errorf("parse bank yaml: multiple documents are not supported")
		}
		return BankDocument{}, fmt.Errorf("parse bank yaml: %w", err)
	}
	return doc, nil
}

// FileBank serves a topic bank loaded once from YAML. Topic lookups are
// case-insensitive; topics listed twice are merged.
type FileBank struct {
	names     map[string]string
	questions map[string][]quiz.RawQuestion
}

var _ TopicBank = (*FileBank)(nil)

// LoadFileBank reads and parses the bank at path.
func LoadFileBank(path string) (*FileBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	doc, err := ParseBank(data)
	if err != nil {
		return nil, err
	}
	return NewFileBank(doc), nil
}

func NewFileBank(doc BankDocument) *FileBank {
	b := &FileBank{
		names:     make(map[string]string, len(doc.Topics)),
		questions: make(map[string][]quiz.RawQuestion, len(doc.Topics)),
	}
	for _, t := range doc.Topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := b.names[key]; !ok {
			b.names[key] = name
		}
		b.questions[key] = append(b.questions[key], t.Questions...)
	}
	return b
}

func (b *FileBank) Topics(_ context.Context) ([]Topic, error) {
	topics := make([]Topic, 0, len(b.names))
	for key, name := range b.names {
		topics = append(topics, Topic{Name: name, Count: len(b.questions[key])})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (b *FileBank) Questions(_ context.Context, topic string) ([]quiz.RawQuestion, error) {
	raw := b.questions[strings.ToLower(strings.TrimSpace(topic))]
	out := make([]quiz.RawQuestion, len(raw))
	copy(out, raw)
	return out, nil
}
