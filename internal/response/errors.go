package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidMode     ErrCode = "INVALID_MODE"
	ErrInvalidAnswers  ErrCode = "INVALID_ANSWERS"
	ErrInvalidStart    ErrCode = "INVALID_START_TIME"
	ErrUnknownQuestion ErrCode = "UNKNOWN_QUESTION"
	ErrUntimedSession  ErrCode = "UNTIMED_SESSION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrExamNotFound     ErrCode = "EXAM_NOT_FOUND"
	ErrAttemptNotFound  ErrCode = "ATTEMPT_NOT_FOUND"
	ErrSessionNotFound  ErrCode = "SESSION_NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrSessionClosed    ErrCode = "SESSION_CLOSED"
	ErrConcurrentUpdate ErrCode = "CONCURRENT_UPDATE"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrNoQuestions   ErrCode = "NO_QUESTIONS"
	ErrDataIntegrity ErrCode = "DATA_INTEGRITY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal           ErrCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Request validation failed."
	case ErrInvalidID:
		return "The provided ID has an invalid format."
	case ErrInvalidPayload:
		return "The request body is malformed."
	case ErrInvalidMode:
		return "Invalid exam mode, must be timed or untimed."
	case ErrInvalidAnswers:
		return "Answers must be an object mapping question ids to option ids."
	case ErrInvalidStart:
		return "The start time cannot be in the future."
	case ErrUnknownQuestion:
		return "The question is not part of this session."
	case ErrUntimedSession:
		return "This session is untimed."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrExamNotFound:
		return "Exam not found."
	case ErrAttemptNotFound:
		return "Attempt not found."
	case ErrSessionNotFound:
		return "Session not found or expired."
	case ErrConflict:
		return "The resource already exists."
	case ErrSessionClosed:
		return "This session has already been submitted or discarded."
	case ErrConcurrentUpdate:
		return "The session was modified concurrently, please retry."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrNoQuestions:
		return "This exam has no answerable questions."
	case ErrDataIntegrity:
		return "The exam bank contains questions without exactly one correct option."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	case ErrServiceUnavailable:
		return "A backing service is unavailable."

	default:
		return "An unknown error occurred."
	}
}
