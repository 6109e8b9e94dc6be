package server

import (
	"net"
	"net/http"
	"strings"
)

// clientIP prefers the first X-Forwarded-For hop and falls back to the
// connection address. The result is unsanitized.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return peerIP(r)
}

// peerIP is the host part of the connection address. The rate limiter keys
// on it; headers are ignored.
func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
