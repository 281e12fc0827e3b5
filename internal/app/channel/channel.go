/*
Package channel implements the client's persistent real-time connection to the
chat server.

This file defines the Channel struct, which manages the connection lifecycle
(Disconnected → Connecting → Open → Disconnected | Closed), dispatches inbound
JSON-framed events by their type discriminator, and schedules a fixed-delay
reconnect after every unintentional close for as long as a session identity is
held. Outbound sends are permitted only while the channel is Open; nothing is
queued or buffered.
*/
package channel

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatterm/internal/app/proto"
	"chatterm/internal/pkg/errs"
	"chatterm/internal/pkg/logx"
	"chatterm/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// timeout for completing the WebSocket handshake.
	handshakeTimeout = 10 * time.Second

	// maximum allowed size (in bytes) of a frame sent by the server.
	maxMessageSize = 64 * 1024

	// ReconnectDelay is the fixed wait before each reconnection attempt. The
	// retry loop is unbounded and linear; there is no backoff escalation.
	ReconnectDelay = 3 * time.Second

	// EndpointPath is the server's real-time endpoint, same-origin with the
	// HTTP endpoints.
	EndpointPath = "/websocket"
)

// Channel is the client's single real-time connection handle. At most one
// underlying connection is alive at a time; a reconnect replaces it wholesale
// and the previous handle is closed explicitly.
type Channel struct {
	// endpoint is the ws(s) URL derived from the server's base URL.
	endpoint string

	// dialer carries the shared cookie jar so the server can resolve the
	// session identity during the handshake.
	dialer *websocket.Dialer

	// handler receives dispatched events and state transitions.
	handler Handler

	// hasIdentity gates reconnection: it reports whether a session identity
	// is still held. Logout clears the identity, which suppresses retries.
	hasIdentity func() bool

	// reconnectDelay is ReconnectDelay in production; tests shorten it.
	reconnectDelay time.Duration

	// mu protects conn and state.
	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	// writeMu serializes outbound writes on the current connection.
	writeMu sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// structured logger with channel context.
	logger zerolog.Logger
}

// EndpointURL maps the server's base URL to the real-time endpoint: a secure
// origin implies a secure channel (https to wss, http to ws), and any path
// prefix on the base is kept.
func EndpointURL(serverURL *url.URL) string {
	endpoint := serverURL.JoinPath(EndpointPath)
	endpoint.Scheme = "ws"
	if serverURL.Scheme == "https" {
		endpoint.Scheme = "wss"
	}
	endpoint.RawQuery = ""

	return endpoint.String()
}

// New constructs a Channel against the given server. The jar is shared with
// the HTTP client so session cookies flow on the handshake. hasIdentity is
// consulted before every reconnection attempt.
func New(serverURL *url.URL, jar http.CookieJar, handler Handler, hasIdentity func() bool) *Channel {
	channelLogger := logx.Logger().With().
		Str("component", "channel").
		Logger()

	return &Channel{
		endpoint: EndpointURL(serverURL),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			Jar:              jar,
		},
		handler:        handler,
		hasIdentity:    hasIdentity,
		reconnectDelay: ReconnectDelay,
		state:          StateDisconnected,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
		logger:         channelLogger,
	}
}

// Connect starts the channel's connect-and-retry loop. It must be called at
// most once per Channel; a logout constructs a fresh Channel for the next
// session.
func (c *Channel) Connect() {
	go c.run()
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the run loop has fully stopped.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Send transmits one chat frame. It is rejected locally with ErrNotConnected
// unless the channel is Open; unsent frames are never queued.
func (c *Channel) Send(frame proto.ChatFrame) *errs.CustomError {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen && conn != nil
	c.mu.Unlock()

	if !open {
		return errs.NewError(errs.ErrNotConnected)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return errs.NewError(errs.ErrNotConnected)
	}

	if err := conn.WriteJSON(frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing chat frame")
		return errs.NewError(errs.ErrNotConnected)
	}

	return nil
}

// Close shuts the channel down intentionally. No reconnection follows; the
// run loop exits after the underlying connection unwinds.
func (c *Channel) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		alreadyClosed := c.state == StateClosed
		c.state = StateClosed
		c.mu.Unlock()

		if conn != nil {
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
				c.logger.Debug().Err(err).Msg("Failed to write close frame")
			}
			if err := conn.Close(); err != nil {
				c.logger.Debug().Err(err).Msg("Connection close error")
			}
		}

		if !alreadyClosed {
			c.handler.OnStateChange(StateClosed)
		}

		c.logger.Info().Msg("Real-time channel closed intentionally.")
	})
}

// run is the connect-and-retry loop. Each iteration dials once, pumps inbound
// frames until the connection dies, then either stops (intentional close or no
// identity held) or waits the fixed delay and retries.
func (c *Channel) run() {
	defer close(c.done)

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		connTag := randx.ConnTag()
		logger := c.logger.With().Str("conn_tag", connTag).Logger()

		c.setState(StateConnecting)
		logger.Info().Str("endpoint", c.endpoint).Msg("Connecting to real-time endpoint")

		conn, resp, err := c.dialer.Dial(c.endpoint, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		if err != nil {
			logger.Warn().Err(err).Msg("Real-time connection failed")
		} else {
			// Close may have landed while the dial was in flight; a handshake
			// that completes after an intentional close is discarded, never
			// adopted.
			if !c.adoptConn(conn) {
				logger.Info().Msg("Discarding connection established after close")
				return
			}
			c.setState(StateOpen)
			logger.Info().Msg("Real-time channel open")

			c.readLoop(conn, logger)

			// Explicitly release the handle before any replacement is dialed.
			c.dropConn(conn)
		}

		select {
		case <-c.stop:
			return
		default:
		}

		c.setState(StateDisconnected)

		if !c.hasIdentity() {
			logger.Info().Msg("No session identity held. Not reconnecting.")
			return
		}

		logger.Info().Dur("delay", c.reconnectDelay).Msg("Scheduling reconnection attempt")

		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-c.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		// The identity may have been dropped while the timer ran.
		if !c.hasIdentity() {
			return
		}
	}
}

// readLoop pumps inbound frames from one connection until it dies.
func (c *Channel) readLoop(conn *websocket.Conn, logger zerolog.Logger) {
	conn.SetReadLimit(maxMessageSize)

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("Real-time channel closed unexpectedly")
			} else {
				logger.Info().Err(err).Msg("Real-time channel closed")
			}
			return
		}

		c.dispatch(messageBytes, logger)
	}
}

// dispatch routes one inbound frame by its type discriminator. Unrecognized
// types are ignored.
func (c *Channel) dispatch(messageBytes []byte, logger zerolog.Logger) {
	var evt proto.Event
	if err := json.Unmarshal(messageBytes, &evt); err != nil {
		logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Server sent invalid JSON frame")
		return
	}

	switch evt.Type {
	case proto.TypeWelcome:
		logger.Debug().Str("username", evt.Username).Msg("Welcome event received")
		c.handler.OnWelcome(evt)

	case proto.TypeChat:
		c.handler.OnChat(evt)

	case proto.TypeOnlineUsers:
		c.handler.OnOnlineUsers(evt.Users)

	default:
		logger.Debug().Str("event_type", evt.Type).Msg("Ignoring unrecognized event type")
	}
}

// adoptConn installs the new connection handle, closing any predecessor. It
// refuses adoption once the channel is closed, so StateClosed stays terminal,
// and reports whether the connection was adopted.
func (c *Channel) adoptConn(conn *websocket.Conn) bool {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		conn.Close()
		return false
	}
	old := c.conn
	c.conn = conn
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return true
}

// dropConn releases the given connection if it is still the current handle.
func (c *Channel) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	conn.Close()
}

// setState records a state transition and notifies the handler. Transitions
// out of StateClosed are refused; an intentional close is terminal.
func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	c.handler.OnStateChange(s)
}
