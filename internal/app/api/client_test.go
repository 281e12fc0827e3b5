package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterm/internal/app/api"
	"chatterm/internal/app/proto"
	"chatterm/internal/pkg/errs"
)

func newClient(t *testing.T, srv *httptest.Server) *api.Client {
	t.Helper()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return api.New(base, jar)
}

func TestLoginSuccess(t *testing.T) {
	var gotUsername, gotPassword string

	r := chi.NewRouter()
	r.Post(api.LoginPath, func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		gotUsername = req.PostFormValue("username")
		gotPassword = req.PostFormValue("password")

		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "true"})
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv)
	customErr := client.Login(context.Background(), "alice", "s3cret")

	require.Nil(t, customErr)
	assert.Equal(t, "alice", gotUsername)
	assert.Equal(t, "s3cret", gotPassword)
}

func TestEndpointsHonorBasePathPrefix(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/chat", func(r chi.Router) {
		r.Post(api.LoginPath, func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get(api.HistoryPath, func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"1","username":"alice","message":"hi"}]`))
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	base, err := url.Parse(srv.URL + "/chat")
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := api.New(base, jar)

	require.Nil(t, client.Login(context.Background(), "alice", "s3cret"))

	records, customErr := client.History(context.Background())
	require.Nil(t, customErr)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Username)
}

func TestLoginFailureSurfacesBodyText(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.LoginPath, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	customErr := newClient(t, srv).Login(context.Background(), "alice", "wrong")

	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrAuthFailed, customErr.Code)
	assert.Equal(t, "Invalid username or password", customErr.Message)
}

func TestLoginFailureEmptyBodyFallsBack(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.LoginPath, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	customErr := newClient(t, srv).Login(context.Background(), "alice", "wrong")

	require.NotNil(t, customErr)
	assert.Equal(t, "Authentication failed", customErr.Message)
}

func TestLoginNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(chi.NewRouter())
	client := newClient(t, srv)
	srv.Close()

	customErr := client.Login(context.Background(), "alice", "s3cret")

	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrNetworkFailure, customErr.Code)
}

func TestRegisterSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.RegisterPath, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	assert.Nil(t, newClient(t, srv).Register(context.Background(), "alice", "s3cret"))
}

func TestRegisterConflictSurfacesBodyText(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.RegisterPath, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Username already taken", http.StatusConflict)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	customErr := newClient(t, srv).Register(context.Background(), "alice", "s3cret")

	require.NotNil(t, customErr)
	assert.Equal(t, "Username already taken", customErr.Message)
}

func TestAuthInFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	r := chi.NewRouter()
	r.Post(api.LoginPath, func(w http.ResponseWriter, req *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.Nil(t, client.Login(context.Background(), "alice", "s3cret"))
	}()

	// The second submission must be rejected locally while the first hangs.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first login never reached the server")
	}

	customErr := client.Login(context.Background(), "alice", "s3cret")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRequestInFlight, customErr.Code)

	close(release)
	wg.Wait()
}

func TestHistory(t *testing.T) {
	r := chi.NewRouter()
	r.Get(api.HistoryPath, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]proto.MessageRecord{
			{ID: "1", Username: "alice", Message: "hi"},
			{ID: "2", Username: "bob", Message: "hello", Timestamp: 1700000000},
			{ID: "3", Username: "alice", Media: &proto.Media{URL: "/files/a.png", Type: "image/png", Filename: "a.png"}},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	records, customErr := newClient(t, srv).History(context.Background())

	require.Nil(t, customErr)
	require.Len(t, records, 3)
	assert.Equal(t, "bob", records[1].Username)
	assert.Equal(t, int64(1700000000), records[1].Timestamp)
	require.NotNil(t, records[2].Media)
	assert.Equal(t, "/files/a.png", records[2].Media.URL)
}

func TestHistoryServerError(t *testing.T) {
	r := chi.NewRouter()
	r.Get(api.HistoryPath, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	records, customErr := newClient(t, srv).History(context.Background())

	assert.Nil(t, records)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrBadServerResponse, customErr.Code)
}

func TestUploadSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.UploadPath, func(w http.ResponseWriter, req *http.Request) {
		file, header, err := req.FormFile(api.UploadFieldName)
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(proto.UploadResult{
			URL:              "/files/abc/cat.png",
			MimeType:         "image/png",
			OriginalFilename: "cat.png",
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	result, customErr := newClient(t, srv).Upload(context.Background(),
		"cat.png", "image/png", strings.NewReader("png bytes"))

	require.Nil(t, customErr)
	assert.Equal(t, "/files/abc/cat.png", result.URL)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, "cat.png", result.OriginalFilename)
}

func TestUploadFailureSurfacesBodyText(t *testing.T) {
	r := chi.NewRouter()
	r.Post(api.UploadPath, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	result, customErr := newClient(t, srv).Upload(context.Background(),
		"big.mp4", "video/mp4", strings.NewReader("mp4 bytes"))

	assert.Nil(t, result)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUploadFailed, customErr.Code)
	assert.Equal(t, "File too large", customErr.Message)
}
