package errors

// ErrorCode identifies an application error class
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_DIALOGUE_EMPTY
	ErrorCode_PROMPT_TOO_LONG
	ErrorCode_EXTRACTION_FAILED
	ErrorCode_MODEL_OUTPUT_INVALID
	ErrorCode_MODEL_BACKEND_FAILED
	ErrorCode_MODEL_BACKEND_UNAVAILABLE
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_STORAGE_FAILED
)

// String returns the symbolic name for the code
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_ARGUMENT:
		return "INVALID_ARGUMENT"
	case ErrorCode_NOT_FOUND:
		return "NOT_FOUND"
	case ErrorCode_UNAUTHENTICATED:
		return "UNAUTHENTICATED"
	case ErrorCode_AUTH_INVALID_TOKEN:
		return "AUTH_INVALID_TOKEN"
	case ErrorCode_INVALID_PAYLOAD:
		return "INVALID_PAYLOAD"
	case ErrorCode_DIALOGUE_EMPTY:
		return "DIALOGUE_EMPTY"
	case ErrorCode_PROMPT_TOO_LONG:
		return "PROMPT_TOO_LONG"
	case ErrorCode_EXTRACTION_FAILED:
		return "EXTRACTION_FAILED"
	case ErrorCode_MODEL_OUTPUT_INVALID:
		return "MODEL_OUTPUT_INVALID"
	case ErrorCode_MODEL_BACKEND_FAILED:
		return "MODEL_BACKEND_FAILED"
	case ErrorCode_MODEL_BACKEND_UNAVAILABLE:
		return "MODEL_BACKEND_UNAVAILABLE"
	case ErrorCode_DB_QUERY_FAILED:
		return "DB_QUERY_FAILED"
	case ErrorCode_INTEGRATION_CACHE_FAILED:
		return "INTEGRATION_CACHE_FAILED"
	case ErrorCode_INTEGRATION_STORAGE_FAILED:
		return "INTEGRATION_STORAGE_FAILED"
	default:
		return "UNKNOWN"
	}
}
