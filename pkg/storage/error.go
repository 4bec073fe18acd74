package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSerialization is matched by every *SerializationError.
	ErrSerialization = errors.New("message serialization failed")

	// ErrStoreCommunication is matched by every *StoreError.
	ErrStoreCommunication = errors.New("store communication failed")
)

// InvalidArgumentError is returned before any store access when a caller
// passes a blank conversation ID, a nil message slice, or a nil message.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s %s", e.Arg, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// SerializationError wraps a codec failure. Index is the position of the
// offending message within the call, or -1 when it does not apply.
type SerializationError struct {
	Op             string
	ConversationID string
	Index          int
	Err            error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s message %d of conversation %q: %v", e.Op, e.Index, e.ConversationID, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// StoreError wraps a failure reported by the underlying store client.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreCommunication
}
