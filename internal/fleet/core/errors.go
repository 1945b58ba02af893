package core

import (
	"errors"
	"fmt"
)

// TransportError wraps a network or remote failure from the gateway. The
// aggregation engine surfaces it to the caller and leaves the previous
// snapshot in place.
type TransportError struct {
	// Op is the remote operation (or "multicall" for a batch) that failed.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a TransportError for the given operation.
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
