/*
Package configs is responsible for loading and parsing the client's configuration settings.

It configures the client by reading operating system environment variables,
including the running environment, the chat server's base URL, and the path
used to persist session cookies between runs.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
)

// AppConfig contains all configuration parameters required for the client to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string

	// ServerURL is the base URL of the chat server (http or https). The
	// real-time endpoint is derived from it by scheme mapping.
	ServerURL *url.URL

	// CookieFile is the path where session cookies are persisted so a later
	// run can resume an authenticated session.
	CookieFile string
}

// LoadConfig reads and parses the client configuration from environment variables.
// It provides default values for each configuration item and performs necessary
// validation. It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Server URL
	serverURLStr := os.Getenv("CHAT_SERVER_URL")
	if serverURLStr == "" {
		serverURLStr = "http://localhost:8080"
	}

	serverURL, err := url.Parse(serverURLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_SERVER_URL environment variable: %w", err)
	}

	if serverURL.Scheme != "http" && serverURL.Scheme != "https" {
		return nil, fmt.Errorf("CHAT_SERVER_URL must use http or https, got %q", serverURL.Scheme)
	}

	if serverURL.Host == "" {
		return nil, fmt.Errorf("CHAT_SERVER_URL is missing a host")
	}

	cfg.ServerURL = serverURL

	// Cookie persistence path
	cfg.CookieFile = os.Getenv("CHAT_COOKIE_FILE")
	if cfg.CookieFile == "" {
		cfg.CookieFile = defaultCookieFile()
	}

	return cfg, nil
}

// defaultCookieFile places the cookie file in the user config directory when
// one is available, and falls back to the working directory otherwise.
func defaultCookieFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/chatterm/cookies.json"
	}
	return "chatterm_cookies.json"
}
