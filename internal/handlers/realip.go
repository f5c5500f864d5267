package handlers

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentity extracts the visitor identity used for presence
// tracking. First match wins, no merging: the edge proxy's X-Real-IP
// claim, then the first X-Forwarded-For hop, then the transport peer
// address.
func ClientIdentity(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		if first := strings.TrimSpace(strings.SplitN(v, ",", 2)[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
