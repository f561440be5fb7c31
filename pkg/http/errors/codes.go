package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeForbidden              = "forbidden"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInvalidSource  = "invalid_source"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeInvalidSession  = "invalid_session_id"

	// Quiz state errors
	ErrCodeEmptySession       = "empty_session"
	ErrCodeQuestionOutOfRange = "question_out_of_range"
	ErrCodeOptionOutOfRange   = "option_out_of_range"
	ErrCodeAlreadyAnswered    = "already_answered"
	ErrCodeNothingToReset     = "nothing_to_reset"
	ErrCodeDuplicateTap       = "duplicate_tap"

	// Generation errors
	ErrCodeInvalidFormat        = "invalid_format"
	ErrCodeGeneratorUnavailable = "generator_unavailable"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
