package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers timeouts, refused connections and non-2xx statuses.
	ErrTransport = errors.New("transport error")
	// ErrMalformedResponse means the backend answered 2xx with an unusable body.
	ErrMalformedResponse = errors.New("malformed response")
)

// BackendError is returned by every Backend on failure. Its message omits
// the backend name so callers can prefix their own.
type BackendError struct {
	Backend string
	Kind    error
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func transportErr(backend string, err error) error {
	return &BackendError{Backend: backend, Kind: ErrTransport, Err: err}
}

func malformedErr(backend string, err error) error {
	return &BackendError{Backend: backend, Kind: ErrMalformedResponse, Err: err}
}
