// Package errors provides the widget's error taxonomy. No kind here is
// fatal to a widget instance: input rejections are silent no-ops, remote
// and recognition failures degrade to visible or logged fallbacks.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions recovered without user-visible output.
var (
	// ErrEmptyInput rejects a submission that is empty after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy rejects a submission while an exchange is still outstanding.
	// Submissions are rejected, never queued.
	ErrBusy = errors.New("an exchange is already in flight")

	// ErrStorageCorrupt marks persisted history that could not be parsed.
	// The stored value is discarded and the log treated as empty.
	ErrStorageCorrupt = errors.New("stored history is corrupt")
)

// RemoteError represents a rejected exchange with the completion endpoint:
// a non-success HTTP status, a transport failure, or a malformed response
// body. Body carries the raw response for diagnostics; it is logged, never
// shown to the user.
type RemoteError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("completion request failed [%d] at %s", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("completion request failed at %s", e.Endpoint)
}

// Is allows matching any RemoteError via errors.Is.
func (e *RemoteError) Is(target error) bool {
	_, ok := target.(*RemoteError)
	return ok
}

// NewRemoteError creates a new RemoteError.
func NewRemoteError(statusCode int, endpoint, body string) *RemoteError {
	return &RemoteError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
	}
}

// RecognitionError represents a failed speech-recognition session. The
// pending input buffer is left untouched and the adapter returns to idle.
type RecognitionError struct {
	Message string
	Cause   error
}

func (e *RecognitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("speech recognition failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("speech recognition failed: %s", e.Message)
}

func (e *RecognitionError) Unwrap() error {
	return e.Cause
}

// NewRecognitionError creates a new RecognitionError.
func NewRecognitionError(message string, cause error) *RecognitionError {
	return &RecognitionError{Message: message, Cause: cause}
}

// IsInputRejected reports whether err is a silent input rejection: the
// submission is dropped with no log mutation and no user-visible error.
func IsInputRejected(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrBusy)
}

// IsRemoteRejected reports whether err came from the completion endpoint.
func IsRemoteRejected(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// GetHTTPStatus extracts the HTTP status carried by a remote error, or 0.
func GetHTTPStatus(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint a remote error was returned from.
func GetEndpoint(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Endpoint
	}
	return ""
}

// GetResponseBody extracts the raw response body carried by a remote error.
func GetResponseBody(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Body
	}
	return ""
}
