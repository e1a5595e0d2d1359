package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig lists the proxy CIDR ranges whose forwarding headers are trusted.
type IPConfig struct {
	TrustedProxies []string
}

// ExtractClientIP resolves the client address recorded on every login
// attempt. Forwarding headers are honored only when the immediate peer is a
// trusted proxy; otherwise a client could spoof the address on its own
// attempts and pollute both the attempt ledger and the per-IP rate limits.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer := remoteIP(r)

	if config == nil || !isTrustedProxy(peer, config.TrustedProxies) {
		return peer
	}

	if ip := firstForwardedIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}

// firstForwardedIP returns the first parseable address in an X-Forwarded-For
// chain; proxies append, so the first entry is the originating client.
func firstForwardedIP(xff string) string {
	for _, part := range strings.Split(xff, ",") {
		if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}

// remoteIP strips the port from RemoteAddr when one is present.
func remoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// isTrustedProxy reports whether ip falls inside any configured CIDR range.
// Unparseable ranges are skipped, never trusted.
func isTrustedProxy(ip string, trusted []string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}

	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(addr) {
			return true
		}
	}
	return false
}
