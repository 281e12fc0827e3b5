/*
Package transcript holds the rendered chat state: the ordered message
transcript and the online-user panel.

Entries are append-only and exist only for the lifetime of the client; nothing
is persisted. All user-supplied text is sanitized before it enters an entry so
no control sequences can reach the terminal.
*/
package transcript

import (
	"strings"
	"sync"
	"time"
)

// Entry is one rendered transcript message. Media fields are empty when the
// message carries no media.
type Entry struct {
	// ID is the server-issued message ID.
	ID string

	// Author is the sanitized author name.
	Author string

	// Body is the sanitized message text; may be empty for media-only messages.
	Body string

	// MediaURL, MediaType and MediaFilename describe an attached upload.
	// MediaType selects the rendering (image or video) by MIME prefix; other
	// types render no media block.
	MediaURL      string
	MediaType     string
	MediaFilename string

	// Own marks the entry as the viewer's own message.
	Own bool

	// Timestamp is the server's send time when the record carried one, and
	// the client-side receive time otherwise.
	Timestamp time.Time
}

// HasMedia reports whether the entry renders a media block.
func (e Entry) HasMedia() bool {
	return e.MediaURL != "" &&
		(strings.HasPrefix(e.MediaType, "image/") || strings.HasPrefix(e.MediaType, "video/"))
}

// Transcript is the transcript plus the online panel. It is safe for use from
// the channel's event goroutine and the UI goroutine concurrently.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	online  []string
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append sanitizes and appends one entry, returning the stored form.
func (t *Transcript) Append(e Entry) Entry {
	e.Author = Sanitize(e.Author)
	e.Body = Sanitize(e.Body)
	e.MediaURL = Sanitize(e.MediaURL)
	e.MediaFilename = Sanitize(e.MediaFilename)

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()

	return e
}

// Entries returns a copy of the transcript in render order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of transcript entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// SetOnline replaces the online panel with the given list verbatim: server
// order, no merging with the previous list.
func (t *Transcript) SetOnline(users []string) {
	sanitized := make([]string, len(users))
	for i, u := range users {
		sanitized[i] = Sanitize(u)
	}

	t.mu.Lock()
	t.online = sanitized
	t.mu.Unlock()
}

// Online returns a copy of the current online-user list.
func (t *Transcript) Online() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.online))
	copy(out, t.online)
	return out
}

// Reset clears the transcript and the online panel, used on logout.
func (t *Transcript) Reset() {
	t.mu.Lock()
	t.entries = nil
	t.online = nil
	t.mu.Unlock()
}

// IsOwn reports whether a message by author renders as the viewer's own.
// Authors matching the viewer's identity are own; additionally every message
// authored by the shared guest identity is own for a guest viewer.
func IsOwn(author, viewer string, viewerIsGuest bool) bool {
	if viewer != "" && author == viewer {
		return true
	}
	return viewerIsGuest && author == "guest"
}

// Sanitize strips terminal control characters from user-supplied text so
// authors, bodies, filenames and URLs render literally. Newlines and tabs in
// message bodies survive; everything else below 0x20, plus DEL, is dropped.
func Sanitize(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControl(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7f
}
