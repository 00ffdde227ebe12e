package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/session"
)

const RefreshPath = "/users/refresh"

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Jar carries the refresh credential. A fresh in-memory jar is used when nil.
	Jar http.CookieJar
	// Transport overrides http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
}

// Client sends REST calls to the HR backend on behalf of the session held in
// the store. A 401 on an authenticated call triggers one refresh and one retry.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   *session.Store
	logger  *slog.Logger
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Anonymous sends the call without the bearer token. A 401 on it is a
	// plain Unauthorized and never starts a refresh. Credential exchanges
	// (login, register) are anonymous.
	Anonymous bool
}

type Response struct {
	StatusCode int
	Body       []byte
	Retried    bool
}

// pendingRequest is one logical call. retried bounds the refresh cycle to a
// single attempt.
type pendingRequest struct {
	method  string
	url     string
	path    string
	body    []byte
	retried bool
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func New(cfg Config, store *session.Store, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: invalid base url %q", cfg.BaseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("gateway: session store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	jar := cfg.Jar
	if jar == nil {
		jar, err = NewPersistentJar(context.Background(), base.String(), nil, logger)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: cfg.Transport,
		},
		store:  store,
		logger: logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// Do performs the call. Every returned error is an *internal.AppError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	p, err := c.newPending(req)
	if err != nil {
		return nil, err
	}

	var token string
	if !req.Anonymous {
		token = c.store.AccessToken()
	}
	resp, err := c.send(ctx, p, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return c.finish(resp)
	}

	// Nothing to renew: anonymous call, or the refresh endpoint itself.
	if token == "" || p.path == RefreshPath || p.retried {
		return nil, internal.NewUnauthorizedError(messageFrom(resp), internal.ErrCodeUnauthorized)
	}

	newToken, err := c.refresh(ctx)
	if err != nil {
		c.logger.Info("gateway: refresh failed, ending session", "path", p.path, "error", err)
		c.store.Clear(ctx)
		return nil, internal.NewSessionExpiredError().WithCause(err)
	}
	if err := c.store.UpdateAccessToken(ctx, newToken); err != nil {
		c.store.Clear(ctx)
		return nil, internal.NewSessionExpiredError().WithCause(err)
	}

	p.retried = true
	resp, err = c.send(ctx, p, newToken)
	if err != nil {
		return nil, err
	}
	resp.Retried = true
	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info("gateway: retried call still unauthorized, ending session", "path", p.path)
		c.store.Clear(ctx)
		return nil, internal.NewSessionExpiredError()
	}
	return c.finish(resp)
}

// DoJSON performs the call and decodes a non-empty body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return nil, internal.NewExternalError("malformed response from backend", resp.StatusCode).WithCause(err)
	}
	return resp, nil
}

func (c *Client) newPending(req Request) (*pendingRequest, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	path := "/" + strings.TrimLeft(req.Path, "/")

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	p := &pendingRequest{method: method, url: u.String(), path: path}
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, internal.NewInternalError("failed to encode request body", err)
		}
		p.body = raw
	}
	return p, nil
}

func (c *Client) send(ctx context.Context, p *pendingRequest, token string) (*Response, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, internal.NewInternalError("failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if p.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" && p.path != RefreshPath {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("gateway: transport failure",
			"method", p.method,
			"path", p.path,
			"retried", p.retried,
			"error", err)
		return nil, internal.NewNetworkError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, internal.NewNetworkError(err)
	}

	c.logger.Debug("gateway: call completed",
		"method", p.method,
		"path", p.path,
		"status", httpResp.StatusCode,
		"retried", p.retried,
		"duration", time.Since(start))

	return &Response{StatusCode: httpResp.StatusCode, Body: raw}, nil
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	p, err := c.newPending(Request{Method: http.MethodPost, Path: RefreshPath})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, p, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", internal.NewStatusError(resp.StatusCode, messageFrom(resp))
	}

	var out refreshResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", internal.NewExternalError("malformed refresh response", resp.StatusCode).WithCause(err)
	}
	if out.AccessToken == "" {
		return "", internal.NewExternalError("refresh response carried no access token", resp.StatusCode)
	}
	return out.AccessToken, nil
}

func (c *Client) finish(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	return nil, internal.NewStatusError(resp.StatusCode, messageFrom(resp))
}

func messageFrom(resp *Response) string {
	var body errorBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return http.StatusText(resp.StatusCode)
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return http.StatusText(resp.StatusCode)
}
