package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrNotEnrolled       ErrCode = "NOT_ENROLLED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Broadcast engine ──────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrInvalidState     ErrCode = "INVALID_STATE"
	ErrActivityExpired  ErrCode = "ACTIVITY_EXPIRED"
	ErrAlreadyAnswered  ErrCode = "ALREADY_ANSWERED"
	ErrSessionEnded     ErrCode = "SESSION_ENDED"
	ErrInvalidAddress   ErrCode = "INVALID_ADDRESS_CODE"
	ErrSummaryOnly      ErrCode = "SUMMARY_ONLY_ACTION"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not own this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."
	case ErrNotEnrolled:
		return "You are not enrolled in this subject."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Broadcast engine ──────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrInvalidState:
		return "This operation is not valid in the current state."
	case ErrActivityExpired:
		return "This activity has already ended."
	case ErrAlreadyAnswered:
		return "You have already answered this activity."
	case ErrSessionEnded:
		return "This session has ended."
	case ErrInvalidAddress:
		return "Invalid session code."
	case ErrSummaryOnly:
		return "This action only applies to summaries."
	case ErrNoQuestions:
		return "The activity has no questions."
	case ErrGenerationFailed:
		return "Content generation failed. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
