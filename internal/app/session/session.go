/*
Package session holds the client's session state and its persistence.

This file defines the Session struct: the identity currently associated with
the UI and the real-time channel, and the auth-form mode. The state is owned by
the client object and mutated only by the auth flow, guest entry, and logout.
*/
package session

import "sync"

// AuthMode selects which operation the auth form submits.
type AuthMode string

const (
	// ModeLogin posts credentials to /login.
	ModeLogin AuthMode = "login"

	// ModeRegister posts credentials to /register.
	ModeRegister AuthMode = "register"
)

// GuestName is the synthetic identity adopted on guest entry.
const GuestName = "guest"

// Session is the client's session state. At most one of the authenticated and
// guest flags is set at a time; both clear means logged out.
type Session struct {
	mu sync.RWMutex

	username        string
	isAuthenticated bool
	isGuest         bool
	mode            AuthMode
}

// New returns a logged-out session with the auth form in login mode.
func New() *Session {
	return &Session{mode: ModeLogin}
}

// Username returns the current session identity, or an empty string when
// logged out (or when an authenticated session was resumed from a cookie
// marker and the server has not yet announced the identity).
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsAuthenticated reports whether the session holds a registered identity.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// IsGuest reports whether the session holds the synthetic guest identity.
func (s *Session) IsGuest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isGuest
}

// Mode returns the current auth-form mode.
func (s *Session) Mode() AuthMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ToggleMode swaps the auth form between login and register. It touches no
// network state.
func (s *Session) ToggleMode() AuthMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeLogin {
		s.mode = ModeRegister
	} else {
		s.mode = ModeLogin
	}
	return s.mode
}

// AdoptIdentity records a successful authentication under the given username.
func (s *Session) AdoptIdentity(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.isAuthenticated = true
	s.isGuest = false
}

// EnterAsGuest records guest entry: the synthetic guest identity, bypassing
// authentication.
func (s *Session) EnterAsGuest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = GuestName
	s.isGuest = true
	s.isAuthenticated = false
}

// Resume marks the session authenticated without a known username, used when a
// persisted cookie marker indicates an existing server session. The username
// is filled in later from the server's welcome event.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = ""
	s.isAuthenticated = true
	s.isGuest = false
}

// AdoptAnnouncedName fills in the username announced by the server, but only
// when the session holds no identity name of its own yet (the resume path).
func (s *Session) AdoptAnnouncedName(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.username == "" && s.isAuthenticated && username != "" {
		s.username = username
	}
}

// HasIdentity reports whether a session identity is still held. It gates the
// channel's automatic reconnection: logout clears the identity first, which
// suppresses further reconnect attempts.
func (s *Session) HasIdentity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated || s.isGuest
}

// Clear wipes all session state back to logged out. The auth-form mode is
// preserved.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = ""
	s.isAuthenticated = false
	s.isGuest = false
}
