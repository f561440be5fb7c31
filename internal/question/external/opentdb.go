package external

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// OpenTDB caps a single request at 50 questions.
const openTDBMaxAmount = 50

// OpenTDBClient fetches questions from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = "https://opentdb.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDBClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type OpenTDBQuestion struct {
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Question        string   `json:"question"`
	CorrectAnswer   string   `json:"correct_answer"`
	IncorrectAnswer []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []OpenTDBQuestion `json:"results"`
}

// OpenTDBQuery narrows a fetch. Zero fields are left to the API defaults.
type OpenTDBQuery struct {
	Amount     int
	Category   int
	Difficulty string
}

// Fetch requests multiple-choice questions only, since true/false items do
// not carry four options.
func (c *OpenTDBClient) Fetch(ctx context.Context, q OpenTDBQuery) ([]OpenTDBQuestion, error) {
	amount := min(max(q.Amount, 1), openTDBMaxAmount)
	values := url.Values{}
	values.Set("amount", strconv.Itoa(amount))
	values.Set("type", "multiple")
	if q.Category > 0 {
		values.Set("category", strconv.Itoa(q.Category))
	}
	if q.Difficulty != "" {
		values.Set("difficulty", q.Difficulty)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api.php?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("opentdb non-200: %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response code %d", payload.ResponseCode)
	}
	return payload.Results, nil
}

// ToRaw converts OpenTDB items into raw records: incorrect answers first, the
// correct answer last. Entities are decoded since the API HTML-escapes text.
func ToRaw(items []OpenTDBQuestion) []quiz.RawQuestion {
	raw := make([]quiz.RawQuestion, 0, len(items))
	for _, it := range items {
		options := make([]string, 0, len(it.IncorrectAnswer)+1)
		for _, o := range it.IncorrectAnswer {
			options = append(options, html.UnescapeString(o))
		}
		options = append(options, html.UnescapeString(it.CorrectAnswer))
		raw = append(raw, quiz.RawQuestion{
			Q:       html.UnescapeString(it.Question),
			Options: options,
			Ans:     len(options) - 1,
		})
	}
	return raw
}
