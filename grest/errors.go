package grest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kroma-labs/grest/httpclient"
)

// NetworkErrorMessage is the Error.Message of calls that received no response.
const NetworkErrorMessage = "Network Error"

var (
	// ErrReleased is wrapped by the Error of requests made through an Endpoint
	// after its Client was released.
	ErrReleased = errors.New("grest: endpoint released")

	// ErrAccessorConflict is wrapped when two endpoint names map to the same accessor key.
	ErrAccessorConflict = errors.New("grest: accessor key conflict")

	// ErrInvalidName is wrapped when an endpoint name yields an empty accessor key.
	ErrInvalidName = errors.New("grest: invalid endpoint name")
)

// Error is the normalized failure of a Request.
//
// Message is always set. Status, Data and Headers are only set when the
// server answered with a non-2xx status.
type Error struct {
	Message string
	Status  int
	Data    any
	Headers http.Header

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("grest: HTTP %d: %s", e.Status, e.Message)
	}
	return "grest: " + e.Message
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// normalizeError maps any transport error onto *Error.
func normalizeError(err error) *Error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.StatusText
		if msg == "" {
			msg = http.StatusText(statusErr.Status)
		}
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status code %d", statusErr.Status)
		}
		return &Error{
			Message: msg,
			Status:  statusErr.Status,
			Data:    statusErr.Data,
			Headers: statusErr.Headers,
			Err:     err,
		}
	}

	return &Error{
		Message: NetworkErrorMessage,
		Err:     err,
	}
}
