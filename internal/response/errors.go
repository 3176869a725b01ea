package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication / authorization ────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Question-specific ─────────────────────────────────────────────
	ErrEmptyTypeSet  ErrCode = "EMPTY_TYPE_SET"
	ErrDuplicateText ErrCode = "DUPLICATE_QUESTION_TEXT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication / authorization ────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."

	// ─── Question-specific ─────────────────────────────────────────────
	case ErrEmptyTypeSet:
		return "A question must keep at least one type."
	case ErrDuplicateText:
		return "A question with the same text already exists."

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
