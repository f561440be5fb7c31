package quiz

import "errors"

// Invalid operations on a Session. They are status results: the session is
// left untouched whenever one of these is returned.
var (
	ErrEmptySession       = errors.New("session has no questions")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrOptionOutOfRange   = errors.New("option index out of range")
	ErrAlreadyAnswered    = errors.New("question already answered")
	ErrNothingToReset     = errors.New("nothing to reset")
)
