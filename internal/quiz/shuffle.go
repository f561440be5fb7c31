package quiz

import (
	"math/rand/v2"
	"sync"
)

// Shuffler produces uniform random permutations (Fisher-Yates).
// The zero value is not usable; use NewShuffler or DefaultShuffler.
type Shuffler struct {
	mu   sync.Mutex
	rng  *rand.Rand
	intN func(n int) int
}

var defaultShuffler = &Shuffler{intN: rand.IntN}

// DefaultShuffler returns a process-wide shuffler backed by the runtime source.
func DefaultShuffler() *Shuffler {
	return defaultShuffler
}

// NewShuffler builds a shuffler over src. Pass a seeded source for
// reproducible permutations in tests.
func NewShuffler(src rand.Source) *Shuffler {
	s := &Shuffler{rng: rand.New(src)}
	s.intN = s.lockedIntN
	return s
}

func (s *Shuffler) lockedIntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// ShuffleQuestion returns q with its options permuted and CorrectIndex moved
// to follow the correct option's text. When that text appears more than once
// among the options the position is ambiguous and CorrectIndex falls back to 0.
func (s *Shuffler) ShuffleQuestion(q Question) Question {
	correct := q.CorrectOption()

	options := q.Options
	for i := len(options) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	return Question{
		Text:         q.Text,
		Options:      options,
		CorrectIndex: locateOption(options, correct),
	}
}

// ShuffleSet returns a permutation of the questions; option order is untouched.
func (s *Shuffler) ShuffleSet(qs QuestionSet) QuestionSet {
	return ShuffleSlice(s, qs)
}

// ShuffleOptions applies ShuffleQuestion to every question, keeping set order.
func (s *Shuffler) ShuffleOptions(qs QuestionSet) QuestionSet {
	out := make(QuestionSet, len(qs))
	for i, q := range qs {
		out[i] = s.ShuffleQuestion(q)
	}
	return out
}

// ShuffleSlice returns a shuffled copy of items.
func ShuffleSlice[T any](s *Shuffler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleQuestion shuffles with the default shuffler.
func ShuffleQuestion(q Question) Question {
	return defaultShuffler.ShuffleQuestion(q)
}

// ShuffleSet shuffles with the default shuffler.
func ShuffleSet(qs QuestionSet) QuestionSet {
	return defaultShuffler.ShuffleSet(qs)
}

func locateOption(options [OptionCount]string, text string) int {
	idx := -1
	for i, o := range options {
		if o != text {
			continue
		}
		if idx >= 0 {
			return 0
		}
		idx = i
	}
	if idx < 0 {
		return 0
	}
	return idx
}
