package adminapi

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected means the API answered but did not report success.
	ErrRejected = errors.New("account-admin API rejected the request")
	// ErrInvalidResponse means the API reported success without the payload
	// the caller needs.
	ErrInvalidResponse = errors.New("account-admin API returned invalid response data")
)

// TransportError wraps a failure to reach the API at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses. It matches ErrRejected.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: account-admin API returned status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrRejected }

// IsTransport reports whether err came from the network rather than the API.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
