package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petal-labs/genlang/gemini"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// handleAPIError renders err and maps it to an exit code: HTTP and
// decode failures count as API errors, everything else as network.
func (a *App) handleAPIError(err error) error {
	code := ExitNetwork
	errType := "network_error"

	var httpErr *gemini.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = ExitAPI
		errType = "api_error"
	case errors.Is(err, gemini.ErrDecode):
		code = ExitAPI
		errType = "decode_error"
	}

	if a.jsonOutput {
		out := map[string]any{
			"error": map[string]any{
				"type":    errType,
				"message": err.Error(),
			},
		}
		if httpErr != nil {
			out["error"].(map[string]any)["status_code"] = httpErr.StatusCode
			if httpErr.APIStatus != "" {
				out["error"].(map[string]any)["status"] = httpErr.APIStatus
			}
		}
		enc := json.NewEncoder(a.stderr)
		enc.SetIndent("", "  ")
		enc.Encode(out)
	} else if httpErr != nil {
		fmt.Fprintf(a.stderr, "Error: %s (http %d)\n", httpErr.Message, httpErr.StatusCode)
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}

	return exitWithCode(code, err)
}

// outputJSON writes v to stdout as indented JSON.
func (a *App) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
