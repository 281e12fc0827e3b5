/*
Package client ties the session, HTTP API, real-time channel, attachment and
transcript together into one client-session object.

This file implements the user-initiated flows: session resume on startup, the
auth form, guest entry, logout teardown, attachment selection, and the two
send paths (plain text, and upload-then-send).
*/
package client

import (
	"context"
	"strings"
	"time"

	"chatterm/internal/app/channel"
	"chatterm/internal/app/proto"
	"chatterm/internal/app/session"
	"chatterm/internal/app/transcript"
	"chatterm/internal/pkg/errs"
)

// Start resumes an existing session when the persisted cookie jar carries the
// "auth" marker: the history is loaded, the channel is opened, and the chat
// view becomes active without any validating round-trip. Without the marker
// the client stays on the auth view.
func (c *Client) Start(ctx context.Context) {
	if !session.HasAuthMarker(c.jar, c.cfg.ServerURL) {
		c.logger.Debug().Msg("No session marker found; starting on the auth view")
		return
	}

	c.logger.Info().Msg("Session marker present; resuming session")
	c.session.Resume()
	c.enterChat(ctx)
}

// ToggleAuthMode swaps the auth form between login and register. No network
// activity is involved.
func (c *Client) ToggleAuthMode() session.AuthMode {
	mode := c.session.ToggleMode()
	c.update()
	return mode
}

// SubmitAuth posts the credentials to /login or /register depending on the
// current auth mode. On success the submitted username becomes the session
// identity and the chat view is entered; on failure the returned error carries
// the server's response text and the auth view stays active.
func (c *Client) SubmitAuth(ctx context.Context, username, password string) *errs.CustomError {
	var customErr *errs.CustomError
	if c.session.Mode() == session.ModeRegister {
		customErr = c.api.Register(ctx, username, password)
	} else {
		customErr = c.api.Login(ctx, username, password)
	}

	if customErr != nil {
		return customErr
	}

	c.session.AdoptIdentity(username)

	if err := c.cookies.Save(c.jar, c.cfg.ServerURL); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist session cookies")
	}

	c.enterChat(ctx)
	return nil
}

// EnterAsGuest adopts the synthetic guest identity, bypassing authentication,
// and proceeds exactly like a successful login.
func (c *Client) EnterAsGuest(ctx context.Context) {
	c.logger.Info().Msg("Continuing as guest")
	c.session.EnterAsGuest()
	c.enterChat(ctx)
}

// Logout tears the session down: the server call is best-effort and skipped
// for guests, the identity is cleared before the channel closes so no
// reconnection follows, and all UI state returns to the auth view.
func (c *Client) Logout(ctx context.Context) {
	if c.session.IsAuthenticated() {
		c.api.Logout(ctx)
	}

	// Clearing the identity first suppresses the reconnect loop.
	c.session.Clear()

	c.mu.Lock()
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}

	c.transcript.Reset()
	c.clearPending()
	c.chatActive.Store(false)
	c.sendEnabled.Store(false)

	if err := c.cookies.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to remove persisted cookies")
	}

	c.logger.Info().Msg("Logged out")
	c.update()
}

// Shutdown closes the channel on process exit without touching the persisted
// session, so the next run can resume it.
func (c *Client) Shutdown() {
	c.mu.Lock()
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
		<-ch.Done()
	}
}

// SelectAttachment validates the file at path and stages it as the pending
// attachment. Selection is gated on a registered account; validation failures
// reject the selection with no network call and clear any pending state.
func (c *Client) SelectAttachment(path string) *errs.CustomError {
	if !c.session.IsAuthenticated() {
		customErr := errs.NewError(errs.ErrLoginRequired)
		c.notify(customErr.Message)
		return customErr
	}

	pending, customErr := c.picker.Select(path)
	if customErr != nil {
		c.clearPending()
		c.notify(customErr.Message)
		c.update()
		return customErr
	}

	c.mu.Lock()
	c.pending = pending
	c.mu.Unlock()

	c.logger.Debug().
		Str("file", pending.Name).
		Str("mime_type", pending.MimeType).
		Int64("size", pending.Size).
		Msg("Attachment selected")

	c.update()
	return nil
}

// RemoveAttachment dismisses the pending attachment.
func (c *Client) RemoveAttachment() {
	c.clearPending()
	c.update()
}

// SendDraft submits the composer. With a pending attachment the upload path
// runs; otherwise the trimmed draft is sent as plain text, and empty drafts
// are silently dropped. A nil return means the UI should clear and refocus
// the composer.
func (c *Client) SendDraft(ctx context.Context, draft string) *errs.CustomError {
	if pending := c.Pending(); pending != nil {
		return c.sendWithAttachment(ctx, draft)
	}

	message := strings.TrimSpace(draft)
	if message == "" {
		return nil
	}

	if customErr := c.sendFrame(proto.ChatFrame{Type: proto.TypeChat, Message: message}); customErr != nil {
		c.notify(customErr.Message)
		return customErr
	}

	return nil
}

// sendWithAttachment runs the upload path: guests are blocked with a notice,
// the send control is disabled and relabeled for the duration, and the upload
// result is embedded as media in the chat frame. On failure the attachment
// stays pending for a manual retry. The control is restored on every path.
func (c *Client) sendWithAttachment(ctx context.Context, draft string) *errs.CustomError {
	if !c.session.IsAuthenticated() {
		customErr := errs.NewError(errs.ErrLoginRequired)
		c.notify(customErr.Message)
		return customErr
	}

	pending := c.Pending()
	if pending == nil {
		return errs.NewError(errs.ErrUnknown)
	}

	c.uploading.Store(true)
	c.update()
	defer func() {
		c.uploading.Store(false)
		c.update()
	}()

	file, customErr := c.picker.Open(pending)
	if customErr != nil {
		c.notify("File upload failed: " + customErr.Message)
		return customErr
	}
	defer file.Close()

	result, customErr := c.api.Upload(ctx, pending.Name, pending.MimeType, file)
	if customErr != nil {
		c.notify("File upload failed: " + customErr.Message)
		return customErr
	}

	frame := proto.ChatFrame{
		Type:    proto.TypeChat,
		Message: strings.TrimSpace(draft),
		Media: &proto.Media{
			URL:      result.URL,
			Type:     result.MimeType,
			Filename: result.OriginalFilename,
		},
	}

	if customErr := c.sendFrame(frame); customErr != nil {
		// The upload can outlive the session (logout mid-upload); the frame
		// is dropped with a notice and the attachment stays for retry.
		c.notify(customErr.Message)
		return customErr
	}

	c.clearPending()
	c.update()
	return nil
}

// sendFrame forwards a frame to the live channel, rejecting locally when no
// channel is open.
func (c *Client) sendFrame(frame proto.ChatFrame) *errs.CustomError {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	if ch == nil {
		return errs.NewError(errs.ErrNotConnected)
	}

	return ch.Send(frame)
}

// enterChat activates the chat view: the backlog is fetched once, the
// real-time channel is opened, and the view switches.
func (c *Client) enterChat(ctx context.Context) {
	c.loadHistory(ctx)
	c.openChannel()
	c.chatActive.Store(true)
	c.update()
}

// loadHistory fetches the full message backlog and renders every entry in
// received order. Failures are logged only; the chat proceeds empty.
func (c *Client) loadHistory(ctx context.Context) {
	records, customErr := c.api.History(ctx)
	if customErr != nil {
		c.logger.Warn().Err(customErr).Msg("Failed to load messages")
		return
	}

	for _, rec := range records {
		c.appendRecord(rec.ID, rec.Username, rec.Message, rec.Media, rec.Timestamp)
	}

	c.logger.Info().Int("count", len(records)).Msg("Message history loaded")
}

// openChannel replaces the channel handle wholesale, closing any predecessor,
// and starts connecting.
func (c *Client) openChannel() {
	ch := channel.New(c.cfg.ServerURL, c.jar, c, c.session.HasIdentity)

	c.mu.Lock()
	old := c.channel
	c.channel = ch
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}

	ch.Connect()
}

// appendRecord converts one server message record into a transcript entry.
func (c *Client) appendRecord(id, author, body string, media *proto.Media, ts int64) {
	entry := transcript.Entry{
		ID:     id,
		Author: author,
		Body:   body,
		Own:    transcript.IsOwn(author, c.session.Username(), c.session.IsGuest()),
	}

	if media != nil {
		entry.MediaURL = media.URL
		entry.MediaType = media.Type
		entry.MediaFilename = media.Filename
	}

	if ts > 0 {
		entry.Timestamp = time.Unix(ts, 0)
	}

	c.transcript.Append(entry)
}
