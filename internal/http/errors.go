package http

import (
	"fmt"
	"net/http"
)

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = e.Status
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, text)
}
