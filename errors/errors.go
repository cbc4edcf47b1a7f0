package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Kind tells callers whether the failure is user-facing or an invariant breach.
	Kind Kind `json:"kind"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
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

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
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

// New creates a new AppError with kind and retryable detection derived from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       KindOf(code),
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Lookup errors ---

// NotFound creates an error for a missing resource.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetails(details)
}

// UnknownType creates an error for a type key missing from a stage registry.
func UnknownType(stage, typeKey string) *AppError {
	return New(ErrCodeUnknownType, fmt.Sprintf("Block type %q is not available in stage %s.", typeKey, stage), http.StatusNotFound).
		WithDetails(map[string]any{"stage": stage, "type": typeKey})
}

// UnknownStage creates an error for a stage id that is not configured.
func UnknownStage(stage string) *AppError {
	return New(ErrCodeUnknownStage, fmt.Sprintf("Unknown stage %q.", stage), http.StatusNotFound).
		WithDetail("stage", stage)
}

// UnknownStep creates an error for a progress step that is not configured.
func UnknownStep(step string) *AppError {
	return New(ErrCodeUnknownStep, fmt.Sprintf("Unknown step %q.", step), http.StatusNotFound).
		WithDetail("step", step)
}

// --- Mutation rejections ---

// CapacityExceeded creates an error for a type whose instance limit is reached.
func CapacityExceeded(typeKey string, limit int) *AppError {
	return New(ErrCodeCapacityExceeded, fmt.Sprintf("Only %d %s block(s) allowed.", limit, typeKey), http.StatusConflict).
		WithDetails(map[string]any{"type": typeKey, "max_instances": limit})
}

// AlreadyLinked creates an error for an endpoint that already has a link on the requested side.
func AlreadyLinked(id, side string) *AppError {
	return New(ErrCodeAlreadyLinked, fmt.Sprintf("Block %s already has an %s link.", id, side), http.StatusConflict).
		WithDetails(map[string]any{"id": id, "side": side})
}

// SelfLink creates an error for linking a block to itself.
func SelfLink(id string) *AppError {
	return New(ErrCodeSelfLink, "A block cannot be linked to itself.", http.StatusBadRequest).
		WithDetail("id", id)
}

// NotLinked creates an error for disconnecting a pair that is not linked.
func NotLinked(from, to string) *AppError {
	return New(ErrCodeNotLinked, fmt.Sprintf("Block %s is not linked to %s.", from, to), http.StatusConflict).
		WithDetails(map[string]any{"from": from, "to": to})
}

// IncompatiblePorts creates an error for a link between incompatible block types.
func IncompatiblePorts(from, to, reason string) *AppError {
	return New(ErrCodeIncompatiblePorts, reason, http.StatusBadRequest).
		WithDetails(map[string]any{"from": from, "to": to})
}

// WouldCycle creates an error for a link that would close a loop.
func WouldCycle(from, to string) *AppError {
	return New(ErrCodeWouldCycle, fmt.Sprintf("Linking %s to %s would create a loop.", from, to), http.StatusConflict).
		WithDetails(map[string]any{"from": from, "to": to})
}

// Protected creates an error for deleting a protected block.
func Protected(id, typeKey string) *AppError {
	return New(ErrCodeProtected, fmt.Sprintf("The %s block cannot be deleted.", typeKey), http.StatusForbidden).
		WithDetails(map[string]any{"id": id, "type": typeKey})
}

// --- Validation errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates a new AppError for input validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// ValidationFailed creates an error for a stage rule rejecting the current chains.
func ValidationFailed(stage, message string) *AppError {
	return New(ErrCodeValidationFailed, message, http.StatusUnprocessableEntity).
		WithDetail("stage", stage)
}

// --- Structural and internal errors ---

// Structural creates an error for an invariant breach in an instance set.
func Structural(format string, args ...any) *AppError {
	return New(ErrCodeStructural, fmt.Sprintf(format, args...), http.StatusInternalServerError)
}

// Persistence creates an error for a failed snapshot save or load.
func Persistence(key string, cause error) *AppError {
	return New(ErrCodePersistence, fmt.Sprintf("Snapshot %s could not be persisted.", key), http.StatusInternalServerError).
		WithDetail("key", key).
		WithCause(cause)
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.", http.StatusInternalServerError).
		WithCause(cause)
}
