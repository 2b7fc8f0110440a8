package domain

import "fmt"

// CoreError is the engine's structured error envelope. It never carries
// plaintext secrets (see internal/crypto) and mirrors the taxonomy in
// the comparison pipeline's error handling design: a stable Code for
// callers to switch on, a human Message, and an optional wrapped cause.
type CoreError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func (e *CoreError) WithError(err error) *CoreError {
	return &CoreError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is reports equality by Code, so errors.Is(err, domain.ErrDecrypt) matches
// the CoreError a WithError call produced from that sentinel, not just the
// sentinel's own pointer.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Pre-defined error kinds, one per row of the error taxonomy.
var (
	ErrMalformedResponse = &CoreError{
		Code:    "MALFORMED_RESPONSE",
		Message: "vision provider response could not be parsed or recovered",
	}

	ErrVisionUnavailable = &CoreError{
		Code:    "VISION_UNAVAILABLE",
		Message: "vision capability returned no result",
	}

	ErrCanceled = &CoreError{
		Code:    "CANCELED",
		Message: "operation canceled by caller",
	}

	ErrDeadline = &CoreError{
		Code:    "DEADLINE_EXCEEDED",
		Message: "vision capability call exceeded its deadline",
	}

	ErrStorage = &CoreError{
		Code:    "STORAGE_ERROR",
		Message: "repository operation failed after retries",
	}

	ErrStorageQuota = &CoreError{
		Code:    "STORAGE_QUOTA_EXCEEDED",
		Message: "underlying store is full",
	}

	ErrSchemaMismatch = &CoreError{
		Code:    "SCHEMA_MISMATCH",
		Message: "persisted schema is newer than this build understands",
	}

	ErrDecrypt = &CoreError{
		Code:    "DECRYPT_ERROR",
		Message: "ciphertext failed to verify",
	}

	ErrNotFound = &CoreError{
		Code:    "NOT_FOUND",
		Message: "record not found",
	}
)
