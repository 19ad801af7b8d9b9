package restyutil

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is a valid "no data" outcome, not a failure.
var ErrNotFound = errors.New("not found")

// TransientError covers network faults, timeouts, 5xx and rate-limit
// responses. The client retries these up to its bound before giving up.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %s", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// FatalError covers bad requests and malformed responses. It is
// surfaced immediately and skips only the affected scope, never the
// whole batch.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %s", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

func Transient(format string, args ...any) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

func Fatal(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// Classify maps a response (or transport error) to the error taxonomy.
// Returns nil on 2xx.
func Classify(res *resty.Response, err error) error {
	if err != nil {
		return &TransientError{Err: err}
	}
	code := res.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == 404:
		return ErrNotFound
	case code == 429 || code >= 500:
		return Transient("%s returned %d", res.Request.URL, code)
	default:
		return Fatal("%s returned %d", res.Request.URL, code)
	}
}
