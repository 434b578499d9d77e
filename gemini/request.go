package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// NormalizeModel returns the canonical bare identifier for m: leading
// and trailing whitespace is trimmed and any "models/" resource prefix
// is removed. The result is a fixed point, so normalizing an
// already-normalized value is a no-op.
func NormalizeModel(m ModelID) ModelID {
	id := strings.TrimSpace(string(m))
	for strings.HasPrefix(id, "models/") {
		id = strings.TrimPrefix(id, "models/")
	}
	return ModelID(id)
}

// modelPath returns the URL path fragment for m, e.g. "models/gemini-2.5-flash".
func modelPath(m ModelID) string {
	return "models/" + string(NormalizeModel(m))
}

// builtRequest is a fully assembled request description, ready to hand
// to an HTTP transport. URL embeds the API key as a query parameter and
// must never appear in logs unredacted.
type builtRequest struct {
	method string
	url    string
	header http.Header
	body   []byte
}

// splitActionSuffix splits a logical path of the resource:action form
// used by custom methods such as "models/foo:generateContent". The
// colon only counts when it appears in the final path segment.
func splitActionSuffix(path string) (resource, action string) {
	slash := strings.LastIndex(path, "/")
	colon := strings.LastIndex(path, ":")
	if colon > slash {
		return path[:colon], path[colon+1:]
	}
	return path, ""
}

// buildURL assembles {base}/{version}/{path}?key={key}. Resource
// segments are escaped individually; the colon introducing a custom
// method action stays literal, never percent-encoded.
func buildURL(baseURL, version, path string, key Secret) string {
	resource, action := splitActionSuffix(path)
	segs := strings.Split(resource, "/")
	for i := range segs {
		segs[i] = url.PathEscape(segs[i])
	}
	p := strings.Join(segs, "/")
	if action != "" {
		p += ":" + action
	}

	q := url.Values{}
	q.Set("key", key.Expose())
	return strings.TrimRight(baseURL, "/") + "/" + version + "/" + p + "?" + q.Encode()
}

// buildRequest validates the verb and assembles the request for one
// API operation. The only verbs the API surface uses are GET and POST;
// anything else is a programming error reported as an UnexpectedError.
// GET requests never carry a body.
func buildRequest(baseURL, version string, key Secret, method, path string, body any) (*builtRequest, error) {
	op := method + " " + path

	if method != http.MethodGet && method != http.MethodPost {
		return nil, &UnexpectedError{Op: op, Cause: fmt.Errorf("unsupported HTTP method %q", method)}
	}

	r := &builtRequest{
		method: method,
		url:    buildURL(baseURL, version, path, key),
		header: http.Header{},
	}
	r.header.Set("Accept", "application/json")

	if body != nil && method == http.MethodPost {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &UnexpectedError{Op: op, Cause: fmt.Errorf("encode request body: %w", err)}
		}
		r.body = payload
		r.header.Set("Content-Type", "application/json")
	}
	return r, nil
}
