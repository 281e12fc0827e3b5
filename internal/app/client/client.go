/*
Package client ties the session, HTTP API, real-time channel, attachment and
transcript together into one client-session object with an explicit lifecycle:
constructed on startup, torn down on logout.

This file defines the Client struct and its construction. The flows themselves
(auth, guest entry, logout, sending) live in flows.go; the real-time event
handling lives in events.go.
*/
package client

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"chatterm/internal/app/api"
	"chatterm/internal/app/attachment"
	"chatterm/internal/app/channel"
	"chatterm/internal/app/session"
	"chatterm/internal/app/transcript"
	"chatterm/internal/configs"
	"chatterm/internal/pkg/logx"
	"chatterm/internal/pkg/randx"
)

// Send-control labels: the control is relabeled while an upload is in flight
// and restored afterwards regardless of outcome.
const (
	SendLabelIdle      = "Send"
	SendLabelUploading = "Uploading..."
)

// Client owns all client-side state and orchestrates the three flows:
// authentication, real-time messaging, and file attachment.
type Client struct {
	cfg *configs.AppConfig
	fs  afero.Fs

	session    *session.Session
	cookies    *session.CookieStore
	jar        http.CookieJar
	api        *api.Client
	picker     *attachment.Picker
	transcript *transcript.Transcript

	// mu guards the channel handle and the pending attachment.
	mu      sync.Mutex
	channel *channel.Channel
	pending *attachment.Pending

	// chatActive selects between the auth view and the chat view.
	chatActive atomic.Bool

	// sendEnabled tracks whether the channel is open for sending.
	sendEnabled atomic.Bool

	// uploading disables and relabels the send control while an upload runs.
	uploading atomic.Bool

	// notify surfaces blocking user notices (the alert analog).
	notify func(string)

	// onUpdate is invoked after every state change the UI should repaint for.
	onUpdate func()

	// structured logger with session context.
	logger zerolog.Logger
}

// New constructs a Client: it loads any persisted cookies for the configured
// server and wires the HTTP client, the attachment picker, and an empty
// transcript. The real-time channel is created later, per session.
func New(cfg *configs.AppConfig, fs afero.Fs) (*Client, error) {
	cookies := session.NewCookieStore(fs, cfg.CookieFile)

	jar, err := cookies.Load(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	clientLogger := logx.Logger().With().
		Str("component", "client").
		Str("session_id", randx.SessionID()).
		Logger()

	return &Client{
		cfg:        cfg,
		fs:         fs,
		session:    session.New(),
		cookies:    cookies,
		jar:        jar,
		api:        api.New(cfg.ServerURL, jar),
		picker:     attachment.NewPicker(fs),
		transcript: transcript.New(),
		notify:     func(msg string) { logx.Info("Notice", "message", msg) },
		onUpdate:   func() {},
		logger:     clientLogger,
	}, nil
}

// SetNotifier installs the callback for blocking user notices.
func (c *Client) SetNotifier(fn func(string)) {
	if fn != nil {
		c.notify = fn
	}
}

// SetUpdateHook installs the repaint callback invoked after state changes.
func (c *Client) SetUpdateHook(fn func()) {
	if fn != nil {
		c.onUpdate = fn
	}
}

// Session returns the session state object.
func (c *Client) Session() *session.Session {
	return c.session
}

// Transcript returns the transcript view-model.
func (c *Client) Transcript() *transcript.Transcript {
	return c.transcript
}

// ChatActive reports whether the chat view (rather than the auth view) is
// active.
func (c *Client) ChatActive() bool {
	return c.chatActive.Load()
}

// SendEnabled reports whether the send control is usable: the channel must be
// open and no upload may be in flight.
func (c *Client) SendEnabled() bool {
	return c.sendEnabled.Load() && !c.uploading.Load()
}

// SendLabel returns the send control's current label.
func (c *Client) SendLabel() string {
	if c.uploading.Load() {
		return SendLabelUploading
	}
	return SendLabelIdle
}

// Pending returns the pending attachment, or nil when none is selected.
func (c *Client) Pending() *attachment.Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// clearPending drops the pending attachment.
func (c *Client) clearPending() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// update invokes the repaint hook.
func (c *Client) update() {
	c.onUpdate()
}
