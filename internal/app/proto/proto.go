/*
Package proto defines the wire types the client exchanges with the chat server,
both over HTTP (message history, upload results) and over the real-time channel
(JSON-framed events).

The server is authoritative for every inbound shape; the client never adds
fields of its own to outbound frames.
*/
package proto

// Real-time event type discriminators. Unrecognized types are ignored by the
// client.
const (
	// TypeWelcome is sent by the server once per connection, carrying the
	// identity the server resolved for this connection.
	TypeWelcome = "welcome"

	// TypeChat carries a single chat message, inbound and outbound.
	TypeChat = "chat"

	// TypeOnlineUsers carries the full replacement list of online usernames.
	TypeOnlineUsers = "online-users"
)

// Media describes an uploaded file referenced by a chat message.
type Media struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

// ChatFrame is the client-to-server message frame. Media is attached only on
// the upload send path.
type ChatFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Media   *Media `json:"media,omitempty"`
}

// Event is the server-to-client frame, a union over all inbound event types
// keyed by the Type discriminator.
type Event struct {
	Type      string   `json:"type"`
	ID        string   `json:"id,omitempty"`
	Username  string   `json:"username,omitempty"`
	Message   string   `json:"message,omitempty"`
	Media     *Media   `json:"media,omitempty"`
	Users     []string `json:"users,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

// MessageRecord is one entry of the message history returned by the server.
type MessageRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message,omitempty"`
	Media     *Media `json:"media,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// UploadResult is the server's response to a successful file upload.
type UploadResult struct {
	URL              string `json:"url"`
	MimeType         string `json:"mime_type"`
	OriginalFilename string `json:"original_filename"`
	Size             int64  `json:"size,omitempty"`
}
