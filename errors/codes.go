package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Stream errors
const (
	// ErrCodeAcceptRejected indicates the client does not accept an event stream.
	ErrCodeAcceptRejected ErrorCode = "E_INVALID_ACCEPT_HEADER"
	// ErrCodeInvalidData indicates a payload that cannot be framed (falsy or a function).
	ErrCodeInvalidData ErrorCode = "E_INVALID_DATA"
	// ErrCodeNextInvalid indicates the host continuation is missing.
	ErrCodeNextInvalid ErrorCode = "E_NEXT_INVALID"
	// ErrCodeInvalidMethod indicates the request source lacks stream capabilities.
	ErrCodeInvalidMethod ErrorCode = "E_INVALID_METHOD"
	// ErrCodeStreamFailure is the catch-all for untyped failures.
	ErrCodeStreamFailure ErrorCode = "E_SSE_FAILURE"
)

// Store errors
const (
	// ErrCodeStoreUnavailable indicates the shared client store cannot be used.
	ErrCodeStoreUnavailable ErrorCode = "E_NO_REDIS"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Stream failures are terminal for the connection attempt; only a store outage
// is worth another attempt once the store is back.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeStoreUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
