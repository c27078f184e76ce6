package download

import (
	"errors"
	"fmt"
)

// ErrMaxRetries is returned when a fetch is asked to make no attempts.
var ErrMaxRetries = errors.New("max retries exceeded")

// ErrNotInitialized is returned by Run before Initialize has succeeded.
var ErrNotInitialized = errors.New("manager not initialized")

// RetryError is returned when every attempt of a fetch failed.
// Its message is the message of the last attempt's error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v after %d attempts", ErrMaxRetries, e.Attempts)
	}
	return e.Err.Error()
}

func (e *RetryError) Unwrap() error {
	return e.Err
}
