package runtimeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/fnruntime/logger"
)

// apiVersion is the one provider-specific literal in this client: the date
// segment AWS's Lambda custom-runtime API prefixes every path with. A
// future provider-specific build can override this at construction time via
// WithAPIVersion without touching call sites.
const apiVersion = "2018-06-01"

const (
	headerRequestID  = "Lambda-Runtime-Aws-Request-Id"
	headerTraceID    = "Lambda-Runtime-Trace-Id"
	headerFunctionID = "Lambda-Runtime-Invoked-Function-Arn"
	headerDeadlineMs = "Lambda-Runtime-Deadline-Ms"
	headerIdentity   = "Lambda-Runtime-Cognito-Identity"
	headerClientCtx  = "Lambda-Runtime-Client-Context"
	headerErrorType  = "Lambda-Runtime-Function-Error-Type"
)

// Client issues the control-plane HTTP calls over a single reused
// keep-alive connection. Callers must serialize use: the client must not
// issue Next while a prior Respond/ReportError is still outstanding (the
// Runner enforces this by construction, running one cycle at a time).
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
	timeout    time.Duration
	log        *logger.Logger
}

// Option configures a Client constructed by NewClient.
type Option func(*Client)

// WithTimeout bounds every individual control-plane call. Zero (the
// default) means unbounded, matching the "unbounded" REQUEST_TIMEOUT
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger injects a logger. Defaults to a no-op logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAPIVersion overrides the path-prefix date segment, for a
// provider-specific build that does not follow the AWS convention.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// NewClient builds a Client against the given base endpoint (host:port,
// no scheme) — the same value the AWS_LAMBDA_RUNTIME_API environment
// variable carries.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		baseURL:    "http://" + endpoint,
		apiVersion: apiVersion,
		log:        logger.NewNop(),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// reconnect discards the pooled keep-alive connection, forcing the next
// call to dial fresh. Invoked after any ErrTransport, mirroring the
// "discard and recreate on error" connection discipline.
func (c *Client) reconnect() {
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classifyDoErr distinguishes the three ways an http.Client.Do call can
// fail against ctx (the context the caller of Next/Respond/ReportError
// passed in) and reqCtx (the possibly-tighter child withTimeout derived
// from it): ctx itself being done means the caller cancelled us for its
// own reasons (a stop signal interrupting an idle long-poll, most notably)
// and must never be conflated with the per-call REQUEST_TIMEOUT elapsing,
// which only reqCtx can observe when ctx is still live.
func classifyDoErr(ctx, reqCtx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	case reqCtx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

// Next long-polls for the next invocation. It may block indefinitely: the
// control plane holds the connection open until work arrives.
func (c *Client) Next(ctx context.Context) (*Envelope, error) {
	url := fmt.Sprintf("%s/%s/runtime/invocation/next", c.baseURL, c.apiVersion)

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build next request: %v", ErrProtocol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.reconnect()
		classified := classifyDoErr(ctx, reqCtx, err)
		if errors.Is(classified, ErrCancelled) {
			c.log.Info("next() cancelled", logger.Event("next_cancelled"))
		} else {
			c.log.Warn("next() failed", logger.Event("next_failed"), logger.Error(classified))
		}
		return nil, classified
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.reconnect()
		return nil, fmt.Errorf("%w: read next body: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: next() returned status %d", ErrProtocol, resp.StatusCode)
	}

	requestID := resp.Header.Get(headerRequestID)
	if requestID == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrProtocol, headerRequestID)
	}

	env := &Envelope{
		RequestID:          requestID,
		TraceID:            resp.Header.Get(headerTraceID),
		InvokedFunctionARN: resp.Header.Get(headerFunctionID),
		CognitoIdentity:    resp.Header.Get(headerIdentity),
		ClientContext:      resp.Header.Get(headerClientCtx),
		Payload:            body,
	}

	if ms := resp.Header.Get(headerDeadlineMs); ms != "" {
		millis, perr := strconv.ParseInt(ms, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("%w: malformed %s header: %v", ErrProtocol, headerDeadlineMs, perr)
		}
		env.Deadline = time.UnixMilli(millis)
	}

	return env, nil
}

// Respond posts the invocation outcome body. Content type is always
// provider-opaque bytes; this client does not interpret the payload.
func (c *Client) Respond(ctx context.Context, requestID string, body []byte) error {
	url := fmt.Sprintf("%s/%s/runtime/invocation/%s/response", c.baseURL, c.apiVersion, requestID)
	return c.post(ctx, url, "application/octet-stream", body, nil)
}

// ReportError posts a structured error outcome for the given invocation.
func (c *Client) ReportError(ctx context.Context, requestID string, body ErrorBody) error {
	url := fmt.Sprintf("%s/%s/runtime/invocation/%s/error", c.baseURL, c.apiVersion, requestID)
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal error body: %v", ErrProtocol, err)
	}
	headers := map[string]string{headerErrorType: "Unhandled"}
	return c.post(ctx, url, "application/json", payload, headers)
}

// ReportInitError posts a fatal initialization failure, used only if the
// process never reaches its first successful Next().
func (c *Client) ReportInitError(ctx context.Context, body ErrorBody) error {
	url := fmt.Sprintf("%s/%s/runtime/init/error", c.baseURL, c.apiVersion)
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal init error body: %v", ErrProtocol, err)
	}
	headers := map[string]string{headerErrorType: "Unhandled"}
	return c.post(ctx, url, "application/json", payload, headers)
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) error {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrProtocol, err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.reconnect()
		return classifyDoErr(ctx, reqCtx, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrProtocol, resp.StatusCode, url)
	}
	return nil
}
