package ui

import (
	"io"
	"strings"
	"sync"
)

const (
	seqSaveCursor    = "\0337\033[s"
	seqRestoreCursor = "\033[u\0338"
	seqCursorHome    = "\033[H"
	seqClearLine     = "\033[2K"
	seqInsertLine    = "\033[1L"
	seqClearScreen   = "\033[2J"
)

// Terminal paints the chat view onto an ANSI terminal: transcript lines
// scroll, a pinned status line at the top carries connection state and the
// online panel.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer

	statusOnce sync.Once
	statusErr  error
}

// NewTerminal wraps the given writer, typically stdout.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// ClearScreen wipes the terminal and homes the cursor.
func (t *Terminal) ClearScreen() error {
	return t.write(seqClearScreen + seqCursorHome)
}

// DisplayMessage prints one transcript or notice block above the prompt.
// Multi-line messages are carriage-returned per line.
func (t *Terminal) DisplayMessage(msg string) error {
	var b strings.Builder
	for _, line := range strings.Split(msg, "\n") {
		b.WriteString("\r\033[K")
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return t.write(b.String())
}

// Prompt redraws the input prompt with the given pending text.
func (t *Terminal) Prompt(line string) error {
	return t.write("\r> " + line + "\033[K")
}

// RenderStatus paints the pinned status line without disturbing the cursor.
func (t *Terminal) RenderStatus(text string) error {
	if err := t.ensureStatusLine(); err != nil {
		return err
	}
	return t.write(seqSaveCursor + seqCursorHome + seqClearLine + text + seqRestoreCursor)
}

// ensureStatusLine reserves the top row for status on first use.
func (t *Terminal) ensureStatusLine() error {
	t.statusOnce.Do(func() {
		t.statusErr = t.write(seqSaveCursor + seqCursorHome + seqInsertLine + seqRestoreCursor)
	})
	return t.statusErr
}

func (t *Terminal) write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := io.WriteString(t.w, s)
	return err
}
