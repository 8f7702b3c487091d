package service

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means that an internal server error has occurred.
	ErrInternalServerError = "internal_server_error"
	// ErrEntityNotFound means that the record is absent in the coordination store.
	ErrEntityNotFound = "entity_not_found"
	// ErrBadParameter means that provided parameter does not match declared.
	ErrBadParameter = "bad_parameter"
	// ErrNotServing means the controller is not in the Serving state and refuses operator calls.
	ErrNotServing = "not_serving"

	// ErrConnection means the coordination store is unreachable after the retry budget.
	ErrConnection = "connection_error"
	// ErrNotConnected is a publish failure: the store could not be reached.
	ErrNotConnected = "not_connected"
	// ErrRejectedByStore is a publish failure: the store refused the event (stale version or concurrent writer).
	ErrRejectedByStore = "rejected_by_store"
	// ErrTimeout is a publish failure: the store did not answer in time.
	ErrTimeout = "timeout"

	// ErrSequenceGap means one or more membership events were missed. Internal only.
	ErrSequenceGap = "sequence_gap"
	// ErrProgram means a classifier slot write failed and the update was aborted.
	ErrProgram = "program_error"
)

// ShardError represents an error within the context of the shard control plane.
type ShardError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message"`
	// Inner is a wrapped error that is never shown to API consumers.
	Inner error `json:"-"`
}

// NewShardError creates a new ShardError.
func NewShardError(code string, message string, inner error) *ShardError {
	return &ShardError{
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

func (e ShardError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}

	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// Unwrap the error returning the error's reason.
func (e ShardError) Unwrap() error {
	return e.Inner
}

// newOrInner keeps an already typed inner error instead of re-wrapping it under another code.
func newOrInner(code string, message string, inner error) *ShardError {
	if myInner := ToShardError(inner); myInner != nil {
		return myInner
	}
	return NewShardError(code, message, inner)
}

func NewInternalServerError(message string, inner error) *ShardError {
	return newOrInner(ErrInternalServerError, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *ShardError {
	return newOrInner(ErrEntityNotFound, message, inner)
}

func NewBadParameterError(message string, inner error) *ShardError {
	return newOrInner(ErrBadParameter, message, inner)
}

func NewNotServingError(message string, inner error) *ShardError {
	return NewShardError(ErrNotServing, message, inner)
}

func NewConnectionError(message string, inner error) *ShardError {
	return NewShardError(ErrConnection, message, inner)
}

func NewNotConnectedError(message string, inner error) *ShardError {
	return NewShardError(ErrNotConnected, message, inner)
}

func NewRejectedByStoreError(message string, inner error) *ShardError {
	return NewShardError(ErrRejectedByStore, message, inner)
}

func NewTimeoutError(message string, inner error) *ShardError {
	return NewShardError(ErrTimeout, message, inner)
}

func NewSequenceGapError(message string, inner error) *ShardError {
	return NewShardError(ErrSequenceGap, message, inner)
}

func NewProgramError(message string, inner error) *ShardError {
	return NewShardError(ErrProgram, message, inner)
}

// ToShardError returns a pointer to a shard error, or nil if it is not a shard error.
func ToShardError(err error) *ShardError {
	var e *ShardError
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// ToShardErrorCode returns the code of the error, if available.
func ToShardErrorCode(err error) string {
	if e := ToShardError(err); e != nil {
		return e.Code
	}
	return ""
}

func IsShardError(err error, code string) bool {
	if e := ToShardError(err); e != nil {
		return e.Code == code
	}
	return false
}

func IsInternalServerError(err error) bool {
	return IsShardError(err, ErrInternalServerError)
}

func IsEntityNotFoundError(err error) bool {
	return IsShardError(err, ErrEntityNotFound)
}

func IsBadParameterError(err error) bool {
	return IsShardError(err, ErrBadParameter)
}

func IsNotServingError(err error) bool {
	return IsShardError(err, ErrNotServing)
}

func IsConnectionError(err error) bool {
	return IsShardError(err, ErrConnection)
}

func IsRejectedByStoreError(err error) bool {
	return IsShardError(err, ErrRejectedByStore)
}

// IsPublishError reports any of the publish failure reasons.
func IsPublishError(err error) bool {
	switch ToShardErrorCode(err) {
	case ErrNotConnected, ErrRejectedByStore, ErrTimeout:
		return true
	default:
		return false
	}
}

func IsSequenceGapError(err error) bool {
	return IsShardError(err, ErrSequenceGap)
}

func IsProgramError(err error) bool {
	return IsShardError(err, ErrProgram)
}
