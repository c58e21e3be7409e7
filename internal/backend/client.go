package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenSource supplies the bearer token attached to outbound calls.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the marketplace and banking backend over HTTP+JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// NewClient builds a client for baseURL with an instrumented transport.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// WithTokenSource returns a copy of the client that authenticates with tokens.
// The copy shares the underlying connection pool.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// RemoteError is a non-success response from the backend.
type RemoteError struct {
	Status  int
	Message string
	Body    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// ServerMessage returns the message the backend attached to a failure, if any.
func ServerMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return ""
}

// StatusCode returns the backend status of a failure, or 0 for transport errors.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status
	}
	return 0
}

type callOptions struct {
	token       string
	anonymous   bool
	contentType string
}

type callOption func(*callOptions)

// withToken overrides the token source for a single call.
func withToken(token string) callOption {
	return func(o *callOptions) { o.token = token }
}

// anonymous sends no Authorization header.
func anonymous() callOption {
	return func(o *callOptions) { o.anonymous = true }
}

func withContentType(ct string) callOption {
	return func(o *callOptions) { o.contentType = ct }
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...callOption) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		opts = append([]callOption{withContentType("application/json")}, opts...)
	}

	respBody, err := c.send(ctx, method, path, reader, opts...)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, opts ...callOption) ([]byte, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if o.contentType != "" {
		req.Header.Set("Content-Type", o.contentType)
	}
	if token := c.bearer(o); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	c.logger.Debug("backend request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("backend response", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRemoteError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) bearer(o callOptions) string {
	if o.anonymous {
		return ""
	}
	if o.token != "" {
		return o.token
	}
	if c.tokens == nil {
		return ""
	}
	token, ok := c.tokens.Token()
	if !ok {
		return ""
	}
	return token
}

// newRemoteError extracts a message from a JSON {message} or {error} body,
// falling back to the trimmed text body.
func newRemoteError(status int, body []byte) *RemoteError {
	text := strings.TrimSpace(string(body))
	remote := &RemoteError{Status: status, Body: text}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil {
		remote.Message = strings.TrimSpace(bare)
		return remote
	}

	var envelope struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			remote.Message = envelope.Message
		case envelope.Error != nil:
			if s, ok := envelope.Error.(string); ok {
				remote.Message = s
			}
		}
		return remote
	}
	if !strings.HasPrefix(text, "<") {
		remote.Message = text
	}
	return remote
}
