package gemini

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

// newHTTPError builds an HTTPError for a non-success status, mining the
// standard error envelope {"error":{"code","message","status"}} out of
// the body when present. Bodies without a usable envelope fall back to
// the generic text for the status code.
func newHTTPError(op string, status int, body []byte) *HTTPError {
	e := &HTTPError{Op: op, StatusCode: status, Body: body}
	switch env := gjson.GetBytes(body, "error"); {
	case env.IsObject():
		e.Message = env.Get("message").String()
		e.APIStatus = env.Get("status").String()
	case env.Type == gjson.String:
		e.Message = env.String()
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// decodeResponse normalizes one raw HTTP exchange into either a decoded
// value or exactly one error variant. Any 2xx status counts as success
// and the received status code passes through unaltered; a success body
// that does not decode into T becomes a DecodeError, including the
// empty-body case.
func decodeResponse[T any](op string, status int, body []byte) (*T, error) {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, newHTTPError(op, status, body)
	}
	v := new(T)
	if err := json.Unmarshal(body, v); err != nil {
		return nil, &DecodeError{Op: op, Payload: body, Cause: err}
	}
	return v, nil
}
