package channel

import "chatterm/internal/app/proto"

// State is the real-time channel's connection state.
type State int32

const (
	// StateDisconnected means no connection exists; a retry may be pending.
	StateDisconnected State = iota

	// StateConnecting means a dial attempt is in progress.
	StateConnecting

	// StateOpen means the channel is usable for outbound sends.
	StateOpen

	// StateClosed means the channel was closed intentionally and will not
	// reconnect.
	StateClosed
)

// String returns the lowercase state name for logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler receives channel events. All methods are invoked from the channel's
// run goroutine, one call at a time.
type Handler interface {
	// OnWelcome is informational; the event carries the identity the server
	// resolved for the connection.
	OnWelcome(evt proto.Event)

	// OnChat delivers one chat message to append to the transcript.
	OnChat(evt proto.Event)

	// OnOnlineUsers delivers the full replacement list of online usernames,
	// in server order.
	OnOnlineUsers(users []string)

	// OnStateChange reports every connection state transition; the send
	// control is enabled exactly while the state is StateOpen.
	OnStateChange(state State)
}
