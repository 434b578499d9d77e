package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HTTPDoer dispatches a single HTTP request. *http.Client satisfies it;
// tests substitute their own implementations.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a typed client for the Generative Language REST API.
// Operations return immediately with a Call handle and execute on a
// bounded dispatch pool; see Call.Wait for collecting outcomes.
//
// A Client is safe for concurrent use. Construct it with New and
// release it with Close.
type Client struct {
	cfg      Config
	http     HTTPDoer
	pool     *Pool
	ownsPool bool
	log      *logger

	mu     sync.Mutex
	closed bool
}

// New builds a Client that authenticates with apiKey. The key is held
// as a Secret and only ever leaves the client as the key query
// parameter of request URLs; log output has it redacted.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := Config{
		APIKey:     NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		Timeout:    DefaultTimeout,
		PoolSize:   DefaultPoolSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey.IsEmpty() {
		return nil, errors.New("genlang: API key required")
	}
	switch cfg.APIVersion {
	case APIVersionV1, APIVersionV1Beta:
	default:
		return nil, fmt.Errorf("genlang: unsupported API version %q", cfg.APIVersion)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		cfg:  cfg,
		http: cfg.HTTPClient,
		log:  newLogger(cfg.Logger, cfg.APIKey),
	}
	if c.http == nil {
		c.http = newHTTPClient(cfg.Timeout)
	}
	if cfg.Pool != nil {
		c.pool = cfg.Pool
	} else {
		c.pool = NewPool(cfg.PoolSize)
		c.ownsPool = true
	}
	return c, nil
}

// newHTTPClient builds the default transport with connection-level
// timeouts so a stuck dial or handshake cannot outlive the request
// deadline by much.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// ListModels fetches one page of the models collection in server
// order. The page token on the result is informational; the client
// does not paginate.
func (c *Client) ListModels(ctx context.Context) *Call[*ModelList] {
	return dispatch[ModelList](c, ctx, http.MethodGet, "models", nil)
}

// GetModel fetches the metadata of a single model. The identifier may
// be bare ("gemini-2.5-flash") or prefixed ("models/gemini-2.5-flash").
func (c *Client) GetModel(ctx context.Context, model ModelID) *Call[*Model] {
	return dispatch[Model](c, ctx, http.MethodGet, modelPath(model), nil)
}

// GenerateContent sends prompt to model as a single user turn. cfg may
// be nil to accept the server-side sampling defaults.
func (c *Client) GenerateContent(ctx context.Context, model ModelID, prompt string, cfg *GenerationConfig) *Call[*GenerateContentResponse] {
	req := &GenerateContentRequest{
		Contents:         []Content{TextContent(RoleUser, prompt)},
		GenerationConfig: cfg,
	}
	return dispatch[GenerateContentResponse](c, ctx, http.MethodPost, modelPath(model)+":generateContent", req)
}

// CountTokens reports how many tokens text occupies for model, sent as
// a single user turn.
func (c *Client) CountTokens(ctx context.Context, model ModelID, text string) *Call[*CountTokensResponse] {
	req := &CountTokensRequest{
		Contents: []Content{TextContent(RoleUser, text)},
	}
	return dispatch[CountTokensResponse](c, ctx, http.MethodPost, modelPath(model)+":countTokens", req)
}

// Close releases client resources. A client-owned pool is drained, so
// Close returns only after in-flight requests have completed; a pool
// attached with WithPool is left running for its creator to close.
// Close is idempotent and safe to call concurrently, and operations
// submitted afterwards complete immediately with an UnexpectedError
// wrapping ErrClientClosed rather than hanging.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.ownsPool {
		c.pool.Close()
	}
	if closer, ok := c.http.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	c.log.Debug("client closed", "owns_pool", c.ownsPool)
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// dispatch runs one operation through the build, submit, round-trip,
// normalize pipeline and returns its Call without blocking.
func dispatch[T any](c *Client, ctx context.Context, method, path string, body any) *Call[*T] {
	op := method + " " + path
	call := newCall[*T](op)

	if c.isClosed() {
		finish(c, call, op, "", nil, &UnexpectedError{Op: op, Cause: ErrClientClosed})
		return call
	}

	req, err := buildRequest(c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.APIKey, method, path, body)
	if err != nil {
		finish(c, call, op, "", nil, err)
		return call
	}

	requestID := uuid.NewString()
	accepted := c.pool.Submit(func() {
		v, err := roundTrip[T](c, ctx, req, op, requestID)
		finish(c, call, op, requestID, v, err)
	})
	if !accepted {
		finish(c, call, op, requestID, nil, &UnexpectedError{Op: op, Cause: ErrClientClosed})
	}
	return call
}

// roundTrip performs the HTTP exchange for one built request and
// normalizes the outcome. It owns the per-request deadline.
func roundTrip[T any](c *Client, ctx context.Context, req *builtRequest, op, requestID string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, &UnexpectedError{Op: op, Cause: err}
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	c.log.Debug("dispatching request",
		"op", op,
		"request_id", requestID,
		"url", req.url,
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &UnexpectedError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnexpectedError{Op: op, Cause: fmt.Errorf("read response body: %w", err)}
	}
	return decodeResponse[T](op, resp.StatusCode, respBody)
}

// finish records the outcome on call. Failures pass through the
// redacting logger exactly once, here, before a waiter can observe
// them.
func finish[T any](c *Client, call *Call[*T], op, requestID string, v *T, err error) {
	if err != nil {
		args := []any{"op", op, "error", err}
		if requestID != "" {
			args = append(args, "request_id", requestID)
		}
		var apiErr APIError
		if errors.As(err, &apiErr) {
			args = append(args, "code", apiErr.Code())
		}
		c.log.Error("request failed", args...)
	}
	call.complete(v, err)
}
