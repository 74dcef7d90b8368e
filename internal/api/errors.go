package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks failures where no usable answer came back.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse marks a 2xx answer whose body could not be decoded.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrNetwork)
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// ServerMessage returns the server-provided message of a rejected request, or
// fallback when err is not a rejection or carried no message.
func ServerMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
