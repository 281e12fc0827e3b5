/*
Package ui renders the client on an ANSI terminal: a pinned status line, a
scrolling transcript, and a line-based composer with slash commands in place
of form controls.
*/
package ui

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"chatterm/internal/app/client"
	"chatterm/internal/app/session"
)

const authHint = `Log in to chat.
  <username> <password>   submit the form in the current mode
  /toggle                 switch between login and register
  /guest                  continue as guest
  /quit                   exit`

const chatHint = `You are in the chat. Type a message and press Enter to send.
End a line with \ to continue on the next line.
  /attach <path>   stage a file to send
  /remove          dismiss the staged file
  /logout          log out
  /quit            exit`

// App runs the interactive loop: it reads input lines, routes them to the
// client, and repaints transcript and status as events arrive.
type App struct {
	client   *client.Client
	term     *Terminal
	composer *Composer
	in       io.Reader

	// mu guards the rendered-entry cursor against concurrent repaints.
	mu           sync.Mutex
	lastRendered int
}

// NewApp wires the app to a client and its input/output streams.
func NewApp(c *client.Client, in io.Reader, out io.Writer) *App {
	a := &App{
		client:   c,
		term:     NewTerminal(out),
		composer: NewComposer(),
		in:       in,
	}

	c.SetNotifier(func(msg string) {
		a.term.DisplayMessage("[!] " + msg)
	})
	c.SetUpdateHook(a.repaint)

	return a
}

// Run starts the client, then consumes input lines until EOF, /quit, or
// context cancellation.
func (a *App) Run(ctx context.Context) error {
	a.term.ClearScreen()
	a.client.Start(ctx)
	a.showViewHint()

	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(a.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if a.handleLine(ctx, strings.TrimRight(line, "\r")) {
				return nil
			}
			a.term.Prompt(a.composer.Snapshot())
		}
	}
}

// handleLine routes one input line. It reports whether the app should exit.
func (a *App) handleLine(ctx context.Context, line string) bool {
	if !a.client.ChatActive() {
		return a.handleAuthLine(ctx, line)
	}
	return a.handleChatLine(ctx, line)
}

func (a *App) handleAuthLine(ctx context.Context, line string) bool {
	switch {
	case line == "/quit":
		return true

	case line == "/toggle":
		mode := a.client.ToggleAuthMode()
		if mode == session.ModeRegister {
			a.term.DisplayMessage("Mode: register. Enter <username> <password> to create an account.")
		} else {
			a.term.DisplayMessage("Mode: login. Enter <username> <password> to log in.")
		}
		return false

	case line == "/guest":
		a.client.EnterAsGuest(ctx)
		a.showViewHint()
		return false

	case strings.TrimSpace(line) == "":
		return false
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		a.term.DisplayMessage("Usage: <username> <password>, or /toggle, /guest, /quit")
		return false
	}

	if customErr := a.client.SubmitAuth(ctx, fields[0], fields[1]); customErr != nil {
		a.term.DisplayMessage("[!] " + customErr.Message)
		return false
	}

	a.showViewHint()
	return false
}

func (a *App) handleChatLine(ctx context.Context, line string) bool {
	switch {
	case line == "/quit":
		a.client.Shutdown()
		return true

	case line == "/logout":
		a.composer.Drain()
		a.client.Logout(ctx)
		a.term.ClearScreen()
		a.resetRendered()
		a.showViewHint()
		return false

	case line == "/remove":
		a.client.RemoveAttachment()
		a.term.DisplayMessage("Attachment removed.")
		return false

	case strings.HasPrefix(line, "/attach "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/attach "))
		if path == "" {
			a.term.DisplayMessage("Usage: /attach <path>")
			return false
		}
		if customErr := a.client.SelectAttachment(path); customErr != nil {
			return false
		}
		if pending := a.client.Pending(); pending != nil {
			a.term.DisplayMessage("Staged: " + pending.Preview())
		}
		return false
	}

	if !a.composer.Add(line) {
		return false
	}

	a.client.SendDraft(ctx, a.composer.Drain())
	return false
}

// repaint prints transcript entries appended since the last repaint and
// refreshes the status line. Invoked from the client's update hook, possibly
// off the input goroutine.
func (a *App) repaint() {
	entries := a.client.Transcript().Entries()

	a.mu.Lock()
	start := a.lastRendered
	if start > len(entries) {
		// Transcript was reset (logout); start over.
		start = 0
	}
	a.lastRendered = len(entries)
	a.mu.Unlock()

	for _, e := range entries[start:] {
		a.term.DisplayMessage(FormatEntry(e))
	}

	if a.client.ChatActive() {
		a.term.RenderStatus(FormatStatus(a.client.SendEnabled(), a.client.SendLabel(), a.client.Transcript().Online()))
	}
}

func (a *App) resetRendered() {
	a.mu.Lock()
	a.lastRendered = 0
	a.mu.Unlock()
}

func (a *App) showViewHint() {
	if a.client.ChatActive() {
		a.term.DisplayMessage(chatHint)
	} else {
		a.term.DisplayMessage(authHint)
	}
}
