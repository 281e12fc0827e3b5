package channel

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterm/internal/app/proto"
)

const testTimeout = 2 * time.Second

// recordingHandler buffers dispatched events on channels so tests can wait on
// them without polling.
type recordingHandler struct {
	states   chan State
	welcomes chan proto.Event
	chats    chan proto.Event
	online   chan []string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		states:   make(chan State, 16),
		welcomes: make(chan proto.Event, 16),
		chats:    make(chan proto.Event, 16),
		online:   make(chan []string, 16),
	}
}

func (h *recordingHandler) OnWelcome(evt proto.Event)    { h.welcomes <- evt }
func (h *recordingHandler) OnChat(evt proto.Event)       { h.chats <- evt }
func (h *recordingHandler) OnOnlineUsers(users []string) { h.online <- users }
func (h *recordingHandler) OnStateChange(s State)        { h.states <- s }

func (h *recordingHandler) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		select {
		case s := <-h.states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for state %v", want)
		}
	}
}

// wsServer upgrades connections on the real-time endpoint and hands them to
// the test over a channel.
type wsServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	s := &wsServer{conns: make(chan *websocket.Conn, 4)}

	r := chi.NewRouter()
	r.Get(EndpointPath, func(w http.ResponseWriter, req *http.Request) {
		conn, err := s.upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		s.conns <- conn
	})

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) baseURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse(s.srv.URL)
	require.NoError(t, err)
	return u
}

func (s *wsServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for a connection")
		return nil
	}
}

func (s *wsServer) expectNoConnection(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-s.conns:
		t.Fatal("unexpected reconnection")
	case <-time.After(within):
	}
}

func TestEndpointURL(t *testing.T) {
	httpURL, _ := url.Parse("http://chat.example.com:8080")
	assert.Equal(t, "ws://chat.example.com:8080/websocket", EndpointURL(httpURL))

	httpsURL, _ := url.Parse("https://chat.example.com")
	assert.Equal(t, "wss://chat.example.com/websocket", EndpointURL(httpsURL))

	// A reverse-proxied base keeps its path prefix.
	prefixURL, _ := url.Parse("https://example.com/chat")
	assert.Equal(t, "wss://example.com/chat/websocket", EndpointURL(prefixURL))
}

func TestChannelOpensAndDispatches(t *testing.T) {
	s := newWSServer(t)
	h := newRecordingHandler()

	ch := New(s.baseURL(t), nil, h, func() bool { return true })
	ch.Connect()
	defer ch.Close()

	conn := s.accept(t)
	defer conn.Close()
	h.waitState(t, StateOpen)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "welcome", "username": "alice"}))
	select {
	case evt := <-h.welcomes:
		assert.Equal(t, "alice", evt.Username)
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for welcome")
	}

	// An unrecognized type is dropped; the chat after it still arrives.
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "typing", "username": "bob"}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "chat", "id": "m1", "username": "bob", "message": "hello",
	}))
	select {
	case evt := <-h.chats:
		assert.Equal(t, "m1", evt.ID)
		assert.Equal(t, "hello", evt.Message)
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for chat")
	}
	assert.Empty(t, h.welcomes)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "online-users", "users": []string{"alice", "bob"},
	}))
	select {
	case users := <-h.online:
		assert.Equal(t, []string{"alice", "bob"}, users)
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for online users")
	}
}

func TestSendRequiresOpenChannel(t *testing.T) {
	s := newWSServer(t)
	h := newRecordingHandler()

	ch := New(s.baseURL(t), nil, h, func() bool { return true })

	customErr := ch.Send(proto.ChatFrame{Type: proto.TypeChat, Message: "hello"})
	require.NotNil(t, customErr)
	assert.Equal(t, "Not connected to server. Please try again.", customErr.Message)
}

func TestSendDeliversFrame(t *testing.T) {
	s := newWSServer(t)
	h := newRecordingHandler()

	ch := New(s.baseURL(t), nil, h, func() bool { return true })
	ch.Connect()
	defer ch.Close()

	conn := s.accept(t)
	defer conn.Close()
	h.waitState(t, StateOpen)

	require.Nil(t, ch.Send(proto.ChatFrame{Type: proto.TypeChat, Message: "hello"}))

	var frame proto.ChatFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, proto.TypeChat, frame.Type)
	assert.Equal(t, "hello", frame.Message)
	assert.Nil(t, frame.Media)
}

func TestReconnectsWhileIdentityHeld(t *testing.T) {
	s := newWSServer(t)
	h := newRecordingHandler()

	var identity atomic.Bool
	identity.Store(true)

	ch := New(s.baseURL(t), nil, h, identity.Load)
	ch.reconnectDelay = 20 * time.Millisecond
	ch.Connect()
	defer ch.Close()

	first := s.accept(t)
	h.waitState(t, StateOpen)

	// A server-side drop must be followed by a fresh connection after the
	// fixed delay.
	first.Close()
	h.waitState(t, StateDisconnected)

	second := s.accept(t)
	h.waitState(t, StateOpen)

	// Once the identity is gone, a drop ends the loop instead.
	identity.Store(false)
	second.Close()

	select {
	case <-ch.Done():
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for the run loop to stop")
	}
	s.expectNoConnection(t, 100*time.Millisecond)
}

func TestCloseDuringDialDiscardsLateConnection(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	r := chi.NewRouter()
	r.Get(EndpointPath, func(w http.ResponseWriter, req *http.Request) {
		close(entered)
		<-release

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		conns <- conn
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	h := newRecordingHandler()
	ch := New(base, nil, h, func() bool { return true })
	ch.Connect()

	// Close while the handshake is held open server-side.
	select {
	case <-entered:
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for the dial to reach the server")
	}
	ch.Close()
	h.waitState(t, StateClosed)

	// The handshake now completes, but the connection must be discarded and
	// the run loop must still unwind.
	close(release)

	select {
	case <-ch.Done():
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for the run loop to stop")
	}
	assert.Equal(t, StateClosed, ch.State())

	// Nothing the server sends on the late connection may be dispatched.
	select {
	case conn := <-conns:
		conn.WriteJSON(map[string]any{"type": "chat", "id": "m9", "username": "bob", "message": "late"})
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for the server-side connection")
	}

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, h.chats)
	assert.Empty(t, h.states, "no state transition may follow the intentional close")
}

func TestCloseIsTerminal(t *testing.T) {
	s := newWSServer(t)
	h := newRecordingHandler()

	ch := New(s.baseURL(t), nil, h, func() bool { return true })
	ch.reconnectDelay = 20 * time.Millisecond
	ch.Connect()

	conn := s.accept(t)
	defer conn.Close()
	h.waitState(t, StateOpen)

	ch.Close()
	h.waitState(t, StateClosed)

	select {
	case <-ch.Done():
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for the run loop to stop")
	}

	assert.Equal(t, StateClosed, ch.State())
	s.expectNoConnection(t, 100*time.Millisecond)

	customErr := ch.Send(proto.ChatFrame{Type: proto.TypeChat, Message: "late"})
	assert.NotNil(t, customErr)
}
