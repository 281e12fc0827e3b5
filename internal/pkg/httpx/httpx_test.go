package httpx

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormRequest(t *testing.T) {
	fields := url.Values{}
	fields.Set("username", "alice")
	fields.Set("password", "s3cret")

	req, err := NewFormRequest(context.Background(), "http://localhost:8080/login", fields)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	require.NoError(t, req.ParseForm())
	assert.Equal(t, "alice", req.PostFormValue("username"))
	assert.Equal(t, "s3cret", req.PostFormValue("password"))
}

func TestNewFileUploadRequest(t *testing.T) {
	content := strings.NewReader("fake image bytes")

	req, err := NewFileUploadRequest(context.Background(),
		"http://localhost:8080/upload-file", "file", "cat.png", "image/png", content)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(req.Body, params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)

	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "cat.png", part.FileName())
	assert.Equal(t, "image/png", part.Header.Get("Content-Type"))

	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestNewFileUploadRequestEscapesFilename(t *testing.T) {
	req, err := NewFileUploadRequest(context.Background(),
		"http://localhost:8080/upload-file", "file", `we"ird.png`, "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)

	reader := multipart.NewReader(req.Body, params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)

	assert.Equal(t, `we"ird.png`, part.FileName())
}

func TestErrorText(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("  Invalid credentials \n"))}
	assert.Equal(t, "Invalid credentials", ErrorText(resp, "fallback"))
}

func TestErrorTextEmptyBodyFallsBack(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("   "))}
	assert.Equal(t, "fallback", ErrorText(resp, "fallback"))
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"url":"/files/a.png","extra":"ignored"}`))}

	var dst struct {
		URL string `json:"url"`
	}
	require.Nil(t, DecodeJSON(resp, &dst))
	assert.Equal(t, "/files/a.png", dst.URL)
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"url":"a"}{"url":"b"}`))}

	var dst struct {
		URL string `json:"url"`
	}
	assert.NotNil(t, DecodeJSON(resp, &dst))
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(`<html>not json</html>`))}

	var dst map[string]any
	assert.NotNil(t, DecodeJSON(resp, &dst))
}
