package utilities

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in order before falling back to the peer address.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
}

// ClientIP returns the originating client address of r. For X-Forwarded-For
// the left-most entry is used.
func ClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		first, _, _ := strings.Cut(value, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
