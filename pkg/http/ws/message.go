package ws

import "encoding/json"

// MessageType constants for the session WebSocket protocol.
const (
	// Client -> Server
	TypeAnswer = "answer"
	TypeReset  = "reset"
	TypePing   = "ping"

	// Server -> Client
	TypeSessionLoaded    = "session_loaded"
	TypeQuestionAnswered = "question_answered"
	TypeStats            = "stats"
	TypeError            = "error"
	TypePong             = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a message of type typ.
func NewMessage(typ string, payload any) (Message, error) {
	msg := Message{Type: typ}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = data
	return msg, nil
}

// Client Messages (incoming)

type AnswerPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

// Server Messages (outgoing)

type QuestionAnsweredPayload struct {
	Index        int  `json:"index"`
	Selected     int  `json:"selected"`
	CorrectIndex int  `json:"correct_index"`
	IsCorrect    bool `json:"is_correct"`
}

type StatsPayload struct {
	Total           int `json:"total"`
	Answered        int `json:"answered"`
	Correct         int `json:"correct"`
	AccuracyPercent int `json:"accuracy_percent"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
