/*
Package session holds the client's session state and its persistence.

This file persists the HTTP cookie jar between runs. The server marks a live
session with a readable "auth" cookie next to its HttpOnly token cookie; on
startup the presence of that marker (value "true") is the signal to resume the
session without re-authenticating. The client never reads credentials out of
the jar, only the marker.
*/
package session

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"

	"chatterm/internal/pkg/logx"
)

// AuthMarkerCookie is the name of the session marker cookie.
const AuthMarkerCookie = "auth"

// persistedCookie is the on-disk form of a single cookie. Only name and value
// survive a round trip; the server re-issues attributes on the next login.
type persistedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CookieStore loads and saves the cookie jar for one server origin.
type CookieStore struct {
	fs   afero.Fs
	path string
}

// NewCookieStore constructs a store persisting to path on the given filesystem.
func NewCookieStore(fs afero.Fs, path string) *CookieStore {
	return &CookieStore{fs: fs, path: path}
}

// Load builds a cookie jar and seeds it with any cookies persisted for the
// server URL. A missing or corrupt file yields an empty jar; persistence is
// best-effort and never blocks startup.
func (st *CookieStore) Load(serverURL *url.URL) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(st.fs, st.path)
	if err != nil {
		return jar, nil
	}

	var persisted []persistedCookie
	if err := json.Unmarshal(data, &persisted); err != nil {
		logx.Warn("Persisted cookie file is corrupt; starting with an empty jar", "path", st.path)
		return jar, nil
	}

	cookies := make([]*http.Cookie, 0, len(persisted))
	for _, pc := range persisted {
		cookies = append(cookies, &http.Cookie{Name: pc.Name, Value: pc.Value})
	}

	jar.SetCookies(serverURL, cookies)
	return jar, nil
}

// Save writes the jar's cookies for the server URL back to disk.
func (st *CookieStore) Save(jar http.CookieJar, serverURL *url.URL) error {
	cookies := jar.Cookies(serverURL)

	persisted := make([]persistedCookie, 0, len(cookies))
	for _, c := range cookies {
		persisted = append(persisted, persistedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(st.path); dir != "." {
		if err := st.fs.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return afero.WriteFile(st.fs, st.path, data, 0o600)
}

// Clear removes the persisted cookie file, used on logout.
func (st *CookieStore) Clear() error {
	err := st.fs.Remove(st.path)
	if err != nil {
		// Nothing persisted yet is not a failure.
		if _, statErr := st.fs.Stat(st.path); statErr != nil {
			return nil
		}
	}
	return err
}

// HasAuthMarker reports whether the jar carries the "auth" marker cookie with
// value "true" for the server URL.
func HasAuthMarker(jar http.CookieJar, serverURL *url.URL) bool {
	for _, c := range jar.Cookies(serverURL) {
		if c.Name == AuthMarkerCookie && c.Value == "true" {
			return true
		}
	}
	return false
}
