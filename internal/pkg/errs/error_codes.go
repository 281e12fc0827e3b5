/*
Package errs provides custom error types and application-level error code constants.

These error codes identify the client-side failure classes: request handling,
attachment validation and upload, session/authentication, and the real-time
channel.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrNetworkFailure indicates the HTTP request never completed (DNS, refused, timeout).
	ErrNetworkFailure = 1001

	// ErrRequestInFlight indicates the same flow was re-submitted while a prior call was pending.
	ErrRequestInFlight = 1002

	// ErrBadServerResponse indicates the server's response body could not be decoded.
	ErrBadServerResponse = 1003
)

// 2xxx: Attachment Errors
const (
	// ErrFileTypeNotAllowed indicates the selected file's MIME type is outside the allowed set.
	ErrFileTypeNotAllowed = 2101

	// ErrFileTooLarge indicates the selected file exceeds the attachment size limit.
	ErrFileTooLarge = 2102

	// ErrFileUnreadable indicates the selected file could not be opened or read.
	ErrFileUnreadable = 2103

	// ErrUploadFailed indicates the upload endpoint rejected the file.
	ErrUploadFailed = 2104
)

// 3xxx: Session and Authentication Errors
const (
	// ErrAuthFailed indicates the login or register call was rejected by the server.
	ErrAuthFailed = 3001

	// ErrLoginRequired indicates an action gated on a registered account was attempted without one.
	ErrLoginRequired = 3002
)

// 4xxx: Real-Time Channel Errors
const (
	// ErrNotConnected indicates an outbound send was attempted while the channel was not open.
	ErrNotConnected = 4001
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified, general client internal error.
	ErrUnknown = 5000
)
