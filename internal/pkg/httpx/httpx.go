/*
Package httpx provides helper functions for building client HTTP requests and
reading server responses.

It encapsulates the logic for form-encoded and multipart request construction,
extraction of the server's error text (with a fallback when the body is empty),
and lenient JSON decoding of response bodies, with size caps on everything the
client reads back.
*/
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"chatterm/internal/pkg/errs"
)

const (
	// MaxErrorBodyBytes caps how much of a failure response body is read for
	// the user-facing error text.
	MaxErrorBodyBytes int64 = 4 << 10 // 4 KB

	// MaxJSONBodyBytes caps how much of a success response body is read when
	// decoding JSON payloads such as the message history.
	MaxJSONBodyBytes int64 = 8 << 20 // 8 MB
)

// NewFormRequest builds a form-urlencoded POST request for the given endpoint.
func NewFormRequest(ctx context.Context, endpoint string, fields url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// NewFileUploadRequest builds a multipart/form-data POST request carrying a
// single file field. The file content is buffered into the request body; the
// caller is responsible for having validated the file size beforehand.
func NewFileUploadRequest(ctx context.Context, endpoint, fieldName, filename, mimeType string, content io.Reader) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+escapeQuotes(filename)+`"`)
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// escapeQuotes neutralizes quote and backslash characters in a filename before
// it is placed inside a Content-Disposition header.
func escapeQuotes(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", `"`, `\"`)
	return replacer.Replace(s)
}

// ErrorText reads the response body as the user-facing failure text.
// An empty or unreadable body yields the fallback string instead, so the user
// always sees something actionable.
func ErrorText(resp *http.Response, fallback string) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodyBytes))
	if err != nil {
		return fallback
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}

	return text
}

// DecodeJSON decodes the response body into dst. Unknown fields are tolerated
// since the server may extend its payloads; trailing garbage is not.
func DecodeJSON(resp *http.Response, dst any) *errs.CustomError {
	decoder := json.NewDecoder(io.LimitReader(resp.Body, MaxJSONBodyBytes))

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrBadServerResponse)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrBadServerResponse)
	}

	return nil
}

// Drain consumes and closes a response body so the underlying connection can
// be reused.
func Drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, MaxErrorBodyBytes))
	resp.Body.Close()
}
