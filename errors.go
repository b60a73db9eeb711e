package elgamal

import (
	"errors"
	"fmt"
)

// ErrorCategory groups engine errors by the layer that raised them
type ErrorCategory string

const (
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryThreshold     ErrorCategory = "threshold"
	ErrorCategoryParticipant   ErrorCategory = "participant"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategoryKeyMaterial   ErrorCategory = "key_material"
	ErrorCategoryKeyGeneration ErrorCategory = "key_generation"
	ErrorCategoryDecryption    ErrorCategory = "decryption"
	ErrorCategoryEncoding      ErrorCategory = "encoding"
	ErrorCategoryInternal      ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Caller input was rejected
	ErrorSeverityHigh     ErrorSeverity = "high"     // Operation must stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// Error is the structured error returned by every engine operation. Messages
// and context never carry secret material.
type Error struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is works against the
// sentinels below after WithCause/WithContext copies
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) clone() *Error {
	c := *e
	c.Context = make(map[string]interface{}, len(e.Context))
	for k, v := range e.Context {
		c.Context[k] = v
	}
	return &c
}

// WithContext returns a copy of the error with an extra context entry
func (e *Error) WithContext(key string, value interface{}) *Error {
	c := e.clone()
	c.Context[key] = value
	return c
}

// WithCause returns a copy of the error wrapping cause
func (e *Error) WithCause(cause error) *Error {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy of the error with a detail message
func (e *Error) WithDetails(format string, args ...interface{}) *Error {
	c := e.clone()
	c.Details = fmt.Sprintf(format, args...)
	return c
}

// IsRecoverable returns whether the error is recoverable
func (e *Error) IsRecoverable() bool {
	return e.Recoverable
}

// NewError creates a new engine error
func NewError(category ErrorCategory, severity ErrorSeverity, code, message string) *Error {
	return &Error{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Input errors
var (
	ErrInvalidPoint = NewError(
		ErrorCategoryValidation, ErrorSeverityMedium, "INVALID_POINT",
		"point is not a valid element of the prime-order subgroup")

	ErrMalformedKeyMaterial = NewError(
		ErrorCategoryKeyMaterial, ErrorSeverityMedium, "MALFORMED_KEY_MATERIAL",
		"key material is malformed")

	ErrEncodingOutOfRange = NewError(
		ErrorCategoryEncoding, ErrorSeverityMedium, "ENCODING_OUT_OF_RANGE",
		"message cannot be encoded as a curve point")

	ErrInvalidNonce = NewError(
		ErrorCategoryValidation, ErrorSeverityMedium, "INVALID_NONCE",
		"encryption nonce is invalid")

	ErrInvalidMessage = NewError(
		ErrorCategoryValidation, ErrorSeverityMedium, "INVALID_MESSAGE",
		"message is not a non-negative decimal integer")
)

// Threshold and participant errors
var (
	ErrEmptyShareSet = NewError(
		ErrorCategoryThreshold, ErrorSeverityMedium, "EMPTY_SHARE_SET",
		"no public key shares supplied")

	ErrInsufficientShares = NewError(
		ErrorCategoryThreshold, ErrorSeverityMedium, "INSUFFICIENT_SHARES",
		"fewer partial decryptions than the threshold")

	ErrInvalidThreshold = NewError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "INVALID_THRESHOLD",
		"threshold value is invalid")

	ErrInvalidParticipantID = NewError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "INVALID_PARTICIPANT_ID",
		"participant index is invalid")

	ErrDuplicateParticipants = NewError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "DUPLICATE_PARTICIPANTS",
		"duplicate participants detected")
)

// Cryptographic errors
var (
	ErrNonceReuseRisk = NewError(
		ErrorCategoryCryptographic, ErrorSeverityHigh, "NONCE_REUSE_RISK",
		"nonce was already used under this public key")

	ErrShareVerificationFailed = NewError(
		ErrorCategoryKeyGeneration, ErrorSeverityHigh, "SHARE_VERIFICATION_FAILED",
		"keygen artifact verification failed")

	ErrProofVerificationFailed = NewError(
		ErrorCategoryDecryption, ErrorSeverityHigh, "PROOF_VERIFICATION_FAILED",
		"partial decryption proof verification failed")

	ErrRandomnessGeneration = NewError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness")
)

// Configuration and internal errors
var (
	ErrInvalidConfiguration = NewError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "INVALID_CONFIGURATION",
		"engine configuration is invalid")

	ErrCurveMismatch = NewError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "CURVE_MISMATCH",
		"value belongs to a different curve than the engine")

	ErrInvalidState = NewError(
		ErrorCategoryInternal, ErrorSeverityHigh, "INVALID_STATE",
		"operation is not allowed in the current state")
)

// WrapError wraps an existing error with engine error context
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, code, message string) *Error {
	return NewError(category, severity, code, message).WithCause(err)
}

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	if e, ok := err.(*Error); ok {
		return e.Category == category
	}
	return false
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.IsRecoverable()
	}
	return true
}

// errorCode extracts the code of an engine error for logging
func errorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "UNCLASSIFIED"
}
