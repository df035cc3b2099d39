package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type surfaced to hosts.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the HTTP status the host should answer with.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so callers can
// write errors.Is(err, errors.AcceptRejected()).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// AcceptRejected is raised when the Accept header allows neither
// text/event-stream, application/json nor */*. Nothing has been written to the
// response yet, so the host may still answer with another representation.
func AcceptRejected() *AppError {
	return &AppError{
		Code: ErrCodeAcceptRejected, Message: "Client does not accept text/event-stream",
		HTTPStatus: http.StatusForbidden,
	}
}

// InvalidData is raised when a payload is falsy or a function.
func InvalidData() *AppError {
	return &AppError{
		Code: ErrCodeInvalidData, Message: "Data cannot be falsey nor a function",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NextInvalid is raised when the host passes no continuation to the stream.
func NextInvalid() *AppError {
	return &AppError{
		Code: ErrCodeNextInvalid, Message: "Next function given to the SSE middleware is not a function",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// InvalidMethod is raised when a request's source cannot carry a stream,
// typically the inert source handed to methods other than GET and POST.
func InvalidMethod() *AppError {
	return &AppError{
		Code: ErrCodeInvalidMethod, Message: "The provided method on the request is invalid!",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// StoreUnavailable is raised when the shared client store is configured but
// cannot be resolved, or when a store call fails.
func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStoreUnavailable, Message: "The shared client store is unavailable",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// UnexpectedStreamFailure wraps any error that is not already typed.
func UnexpectedStreamFailure(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStreamFailure, Message: "Unexpected Error In SSE Middleware",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Validation creates a new AppError for configuration or input validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Wrap returns err as an AppError. Typed errors, wrapped or not, pass through;
// anything else becomes UnexpectedStreamFailure so hosts always see a status.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return UnexpectedStreamFailure(err)
}
