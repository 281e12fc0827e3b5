/*
Package api implements the client side of the chat server's HTTP surface:
authentication, logout, message history, and file upload.

Every network-initiating flow carries an in-flight guard so a second submission
while a prior call is pending is rejected locally instead of racing it. The
underlying http.Client shares its cookie jar with the real-time channel so the
session cookies issued on login flow on every subsequent call.
*/
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"chatterm/internal/app/proto"
	"chatterm/internal/pkg/errs"
	"chatterm/internal/pkg/httpx"
	"chatterm/internal/pkg/logx"
)

// Server endpoint paths, all same-origin with the configured base URL.
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	LogoutPath   = "/logout"
	HistoryPath  = "/chat-messages"
	UploadPath   = "/upload-file"

	// UploadFieldName is the multipart field carrying the file content.
	UploadFieldName = "file"

	// requestTimeout bounds every HTTP call, including uploads.
	requestTimeout = 60 * time.Second
)

// Client issues the one-shot HTTP calls of the chat protocol.
type Client struct {
	http *http.Client
	base *url.URL

	// in-flight guards, one per flow.
	authInFlight   atomic.Bool
	logoutInFlight atomic.Bool
	uploadInFlight atomic.Bool

	// structured logger with API context.
	logger zerolog.Logger
}

// New constructs a Client for the given server base URL. The jar is shared
// with the real-time channel's dialer.
func New(base *url.URL, jar http.CookieJar) *Client {
	apiLogger := logx.Logger().With().
		Str("component", "api").
		Logger()

	return &Client{
		http: &http.Client{
			Jar:       jar,
			Transport: logx.Transport(nil),
			Timeout:   requestTimeout,
		},
		base:   base,
		logger: apiLogger,
	}
}

// endpoint resolves a path against the server base URL, keeping any path
// prefix the base carries (a reverse-proxied deployment).
func (c *Client) endpoint(path string) string {
	resolved := c.base.JoinPath(path)
	resolved.RawQuery = ""
	return resolved.String()
}

// Login submits credentials to /login. A 2xx response means the session was
// adopted server-side; any other outcome is returned as a user-facing error.
func (c *Client) Login(ctx context.Context, username, password string) *errs.CustomError {
	return c.authenticate(ctx, LoginPath, username, password)
}

// Register submits credentials to /register, with the same outcome contract
// as Login.
func (c *Client) Register(ctx context.Context, username, password string) *errs.CustomError {
	return c.authenticate(ctx, RegisterPath, username, password)
}

// authenticate posts form-encoded credentials to the given endpoint. Non-2xx
// responses surface the response body text verbatim, falling back to a generic
// message when the body is empty. Transport failures are reported generically;
// there is no retry.
func (c *Client) authenticate(ctx context.Context, path, username, password string) *errs.CustomError {
	if !c.authInFlight.CompareAndSwap(false, true) {
		c.logger.Warn().Str("path", path).Msg("Auth submission rejected: a prior call is still in flight")
		return errs.NewError(errs.ErrRequestInFlight)
	}
	defer c.authInFlight.Store(false)

	fields := url.Values{}
	fields.Set("username", username)
	fields.Set("password", password)

	req, err := httpx.NewFormRequest(ctx, c.endpoint(path), fields)
	if err != nil {
		return errs.NewError(errs.ErrUnknown, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.NewError(errs.ErrNetworkFailure)
	}
	defer httpx.Drain(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	fallback := errs.NewError(errs.ErrAuthFailed).Message
	return errs.WithMessage(errs.ErrAuthFailed, httpx.ErrorText(resp, fallback))
}

// Logout posts to /logout, best-effort: failures are logged, never surfaced,
// and the caller proceeds with local teardown regardless.
func (c *Client) Logout(ctx context.Context) {
	if !c.logoutInFlight.CompareAndSwap(false, true) {
		c.logger.Warn().Msg("Logout already in flight, skipping duplicate")
		return
	}
	defer c.logoutInFlight.Store(false)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(LogoutPath), nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build logout request")
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Logout request failed")
		return
	}
	defer httpx.Drain(resp)

	if resp.StatusCode >= 400 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Logout rejected by server")
	}
}

// History fetches the full message backlog once. Failures are returned for
// the caller to log; the chat proceeds empty in that case.
func (c *Client) History(ctx context.Context) ([]proto.MessageRecord, *errs.CustomError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(HistoryPath), nil)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.NewError(errs.ErrNetworkFailure)
	}
	defer httpx.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.NewError(errs.ErrBadServerResponse)
	}

	var records []proto.MessageRecord
	if customErr := httpx.DecodeJSON(resp, &records); customErr != nil {
		return nil, customErr
	}

	return records, nil
}

// Upload posts the file as a multipart body to /upload-file and returns the
// server's upload result. Non-2xx responses surface the response body as the
// error text; the caller keeps the pending attachment for a manual retry.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, content io.Reader) (*proto.UploadResult, *errs.CustomError) {
	if !c.uploadInFlight.CompareAndSwap(false, true) {
		c.logger.Warn().Msg("Upload rejected: a prior upload is still in flight")
		return nil, errs.NewError(errs.ErrRequestInFlight)
	}
	defer c.uploadInFlight.Store(false)

	req, err := httpx.NewFileUploadRequest(ctx, c.endpoint(UploadPath), UploadFieldName, filename, mimeType, content)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.NewError(errs.ErrNetworkFailure)
	}
	defer httpx.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fallback := errs.NewError(errs.ErrUploadFailed).Message
		return nil, errs.WithMessage(errs.ErrUploadFailed, httpx.ErrorText(resp, fallback))
	}

	var result proto.UploadResult
	if customErr := httpx.DecodeJSON(resp, &result); customErr != nil {
		return nil, customErr
	}

	return &result, nil
}
