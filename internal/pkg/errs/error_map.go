/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize the notices shown to the user and internal error handling.
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every client error code.
// The key is the error code (int), and the value contains the user-facing notice text.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrNetworkFailure:    {Code: ErrNetworkFailure, Message: "Network error. Please try again."},
	ErrRequestInFlight:   {Code: ErrRequestInFlight, Message: "A previous request is still in progress."},
	ErrBadServerResponse: {Code: ErrBadServerResponse, Message: "Unexpected response from server."},

	// 2xxx: Attachment Errors
	ErrFileTypeNotAllowed: {Code: ErrFileTypeNotAllowed, Message: "Only images (JPEG, PNG, GIF) and MP4 videos are allowed."},
	ErrFileTooLarge:       {Code: ErrFileTooLarge, Message: "File size must be less than %dMB."},
	ErrFileUnreadable:     {Code: ErrFileUnreadable, Message: "Could not read the selected file."},
	ErrUploadFailed:       {Code: ErrUploadFailed, Message: "File upload failed."},

	// 3xxx: Session and Authentication Errors
	ErrAuthFailed:    {Code: ErrAuthFailed, Message: "Authentication failed"},
	ErrLoginRequired: {Code: ErrLoginRequired, Message: "Please log in to upload files"},

	// 4xxx: Real-Time Channel Errors
	ErrNotConnected: {Code: ErrNotConnected, Message: "Not connected to server. Please try again."},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
