package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize coerces raw records into questions, dropping any record that does
// not end up with non-empty text, exactly four options and an answer in range.
// It never fails; malformed records are filtered out silently.
func Normalize(raw []RawQuestion) QuestionSet {
	out := make(QuestionSet, 0, len(raw))
	for _, r := range raw {
		if q, ok := normalizeRecord(r); ok {
			out = append(out, q)
		}
	}
	return out
}

// NormalizeJSON decodes a payload with DecodeRaw and normalizes the records.
// Undecodable payloads yield an empty set.
func NormalizeJSON(data []byte) QuestionSet {
	raw, err := DecodeRaw(data)
	if err != nil {
		return QuestionSet{}
	}
	return Normalize(raw)
}

// DecodeRaw accepts either a JSON array of records or an object carrying the
// records under "mcqs" (preferred) or "questions". Non-object array elements
// become empty records so Normalize drops them.
func DecodeRaw(data []byte) ([]RawQuestion, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question payload: %w", err)
	}

	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		found := false
		for _, key := range []string{"mcqs", "questions"} {
			if items, ok := v[key].([]any); ok {
				list, found = items, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("payload has no mcqs or questions list")
		}
	default:
		return nil, fmt.Errorf("unexpected payload type %T", doc)
	}

	raw := make([]RawQuestion, 0, len(list))
	for _, item := range list {
		raw = append(raw, RawFromValue(item))
	}
	return raw, nil
}

// RawFromValue maps a decoded JSON/YAML value onto a RawQuestion.
func RawFromValue(v any) RawQuestion {
	switch m := v.(type) {
	case map[string]any:
		return RawQuestion{Q: m["q"], Options: m["options"], Ans: m["ans"]}
	case RawQuestion:
		return m
	default:
		return RawQuestion{}
	}
}

func normalizeRecord(r RawQuestion) (Question, bool) {
	text := strings.TrimSpace(coerceText(r.Q))
	if text == "" {
		return Question{}, false
	}

	options := coerceOptions(r.Options)
	if len(options) != OptionCount {
		return Question{}, false
	}

	ans := coerceIndex(r.Ans)
	if ans < 0 || ans >= OptionCount {
		return Question{}, false
	}

	q := Question{Text: text, CorrectIndex: ans}
	copy(q.Options[:], options)
	return q, true
}

// coerceText treats falsy values (nil, "", 0, false) as empty text.
func coerceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
	case int:
		if t == 0 {
			return ""
		}
	case int64:
		if t == 0 {
			return ""
		}
	}
	return stringify(v)
}

func coerceOptions(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case [OptionCount]string:
		return t[:]
	case []any:
		out := make([]string, len(t))
		for i, o := range t {
			out[i] = stringify(o)
		}
		return out
	default:
		return nil
	}
}

// coerceIndex returns the integral value of v, 0 when v is not an integer,
// and -1 when v is integral but cannot be represented as an index.
func coerceIndex(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return -1
		}
		return int(t)
	case uint:
		if t > math.MaxInt32 {
			return -1
		}
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		if t > math.MaxInt32 {
			return -1
		}
		return int(t)
	case uint64:
		if t > math.MaxInt32 {
			return -1
		}
		return int(t)
	case float32:
		return coerceFloatIndex(float64(t))
	case float64:
		return coerceFloatIndex(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return coerceIndex(n)
		}
		if f, err := t.Float64(); err == nil {
			return coerceFloatIndex(f)
		}
		return 0
	default:
		return 0
	}
}

func coerceFloatIndex(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
