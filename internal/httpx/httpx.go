// Package httpx holds small helpers shared by the HTTP service clients.
package httpx

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout applies when a client is built without an explicit timeout.
const DefaultTimeout = 30 * time.Second

const maxExcerpt = 200

// NewClient returns an http.Client with timeout, or DefaultTimeout when timeout <= 0.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Excerpt trims a response body for inclusion in an error message.
func Excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxExcerpt {
		return s
	}
	cut := maxExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// OK reports whether code is a 2xx status.
func OK(code int) bool {
	return code >= 200 && code < 300
}
