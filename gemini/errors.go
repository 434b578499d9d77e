package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classifying failures with errors.Is. Every error
// returned by the client matches exactly one of these.
var (
	// ErrHTTPStatus matches errors caused by a non-2xx response status.
	ErrHTTPStatus = errors.New("genlang: http error status")

	// ErrDecode matches errors caused by a response body that could not
	// be decoded into the expected shape.
	ErrDecode = errors.New("genlang: response decode failed")

	// ErrUnexpected matches transport failures, timeouts and other
	// errors outside the first two classes.
	ErrUnexpected = errors.New("genlang: unexpected error")
)

// ErrClientClosed is the cause recorded on calls dispatched after
// Close. It is wrapped in an UnexpectedError.
var ErrClientClosed = errors.New("genlang: client is closed")

// Classification codes carried by each error variant. These are stable
// strings suitable for metrics labels and log fields.
const (
	CodeHTTPStatus = "http_status"
	CodeDecode     = "decode"
	CodeUnexpected = "unexpected"
)

// APIError is implemented by every error the client produces. Code
// returns one of the classification code constants above.
type APIError interface {
	error
	Code() string
}

// HTTPError reports a response that arrived with a non-success status
// code. Body holds the raw response bytes for callers that need more
// than the mined message; it may be empty.
type HTTPError struct {
	Op         string // operation label, e.g. "GET models"
	StatusCode int
	APIStatus  string // server status token, e.g. "NOT_FOUND", if present
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.APIStatus != "" {
		return fmt.Sprintf("genlang: %s: http %d %s: %s", e.Op, e.StatusCode, e.APIStatus, e.Message)
	}
	return fmt.Sprintf("genlang: %s: http %d: %s", e.Op, e.StatusCode, e.Message)
}

// Code implements APIError.
func (e *HTTPError) Code() string { return CodeHTTPStatus }

// Is reports whether target is ErrHTTPStatus, so that
// errors.Is(err, ErrHTTPStatus) works without unwrapping by hand.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTPStatus }

// Temporary reports whether retrying the identical request could
// plausibly succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DecodeError reports a success response whose body did not match the
// expected shape. Payload holds the offending bytes.
type DecodeError struct {
	Op      string
	Payload []byte
	Cause   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("genlang: %s: decode response: %v", e.Op, e.Cause)
}

// Code implements APIError.
func (e *DecodeError) Code() string { return CodeDecode }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Cause }

// UnexpectedError is the catch-all for failures that are neither an
// HTTP error status nor a decode failure: connection errors, timeouts,
// request construction faults, submission after Close.
type UnexpectedError struct {
	Op    string
	Cause error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("genlang: %s: %v", e.Op, e.Cause)
}

// Code implements APIError.
func (e *UnexpectedError) Code() string { return CodeUnexpected }

// Is reports whether target is ErrUnexpected.
func (e *UnexpectedError) Is(target error) bool { return target == ErrUnexpected }

func (e *UnexpectedError) Unwrap() error { return e.Cause }
