/*
Package client ties the session, HTTP API, real-time channel, attachment and
transcript together into one client-session object.

This file implements channel.Handler: the dispatch targets for inbound
real-time events and connection state transitions.
*/
package client

import (
	"chatterm/internal/app/channel"
	"chatterm/internal/app/proto"
	"chatterm/internal/app/session"
)

// OnWelcome is informational. On a resumed session, where the cookie marker
// proved the session but no username was known locally, the server-announced
// identity is adopted for display and own-message marking.
func (c *Client) OnWelcome(evt proto.Event) {
	if evt.Username != session.GuestName {
		c.session.AdoptAnnouncedName(evt.Username)
	}

	c.logger.Debug().Str("username", evt.Username).Msg("Welcome received")
	c.update()
}

// OnChat appends the message to the transcript; the UI scrolls to the newest
// entry on repaint.
func (c *Client) OnChat(evt proto.Event) {
	c.appendRecord(evt.ID, evt.Username, evt.Message, evt.Media, evt.Timestamp)
	c.update()
}

// OnOnlineUsers replaces the online panel with the list verbatim.
func (c *Client) OnOnlineUsers(users []string) {
	c.transcript.SetOnline(users)
	c.update()
}

// OnStateChange enables the send control exactly while the channel is open.
func (c *Client) OnStateChange(state channel.State) {
	c.sendEnabled.Store(state == channel.StateOpen)
	c.update()
}
