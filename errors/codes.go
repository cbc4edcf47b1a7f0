package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Kind separates recoverable user-facing rejections from invariant breaches.
type Kind string

const (
	// KindUser marks a rejected operation that left state untouched.
	KindUser Kind = "user"
	// KindStructural marks a broken model invariant (cycle, orphan link, dangling reference).
	KindStructural Kind = "structural"
	// KindInternal marks infrastructure failures (persistence, unexpected faults).
	KindInternal Kind = "internal"
)

// Lookup errors
const (
	// ErrCodeNotFound indicates the requested block instance was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnknownType indicates a type key absent from the stage registry.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"
	// ErrCodeUnknownStage indicates a stage id that is not configured.
	ErrCodeUnknownStage ErrorCode = "UNKNOWN_STAGE"
	// ErrCodeUnknownStep indicates a progress step that is not configured.
	ErrCodeUnknownStep ErrorCode = "UNKNOWN_STEP"
)

// Mutation rejections
const (
	// ErrCodeCapacityExceeded indicates the type's instance limit is already reached.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	// ErrCodeAlreadyLinked indicates an endpoint already has a link on that side.
	ErrCodeAlreadyLinked ErrorCode = "ALREADY_LINKED"
	// ErrCodeSelfLink indicates an attempt to link an instance to itself.
	ErrCodeSelfLink ErrorCode = "SELF_LINK"
	// ErrCodeNotLinked indicates the pair is not currently linked.
	ErrCodeNotLinked ErrorCode = "NOT_LINKED"
	// ErrCodeIncompatiblePorts indicates the source produces no output or the target accepts no input.
	ErrCodeIncompatiblePorts ErrorCode = "INCOMPATIBLE_PORTS"
	// ErrCodeWouldCycle indicates the link would close a loop.
	ErrCodeWouldCycle ErrorCode = "WOULD_CYCLE"
	// ErrCodeProtected indicates the instance cannot be deleted by the user.
	ErrCodeProtected ErrorCode = "PROTECTED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeValidationFailed indicates a stage rule rejected the current chains.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// Structural and internal errors
const (
	// ErrCodeStructural indicates an invariant breach in the instance set.
	ErrCodeStructural ErrorCode = "STRUCTURAL_ERROR"
	// ErrCodePersistence indicates a snapshot could not be saved or loaded.
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var codeKinds = map[ErrorCode]Kind{
	ErrCodeStructural:  KindStructural,
	ErrCodePersistence: KindInternal,
	ErrCodeInternal:    KindInternal,
}

// KindOf returns the kind a code belongs to. Unlisted codes are user-facing.
func KindOf(code ErrorCode) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindUser
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodePersistence: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
