package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPConfig holds the trusted proxy configuration for client IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges
}

// ExtractClientIP returns the real client IP for a request. Forwarding headers
// (X-Forwarded-For, X-Real-IP) are honored only when the direct peer is a
// trusted proxy; otherwise a client could spoof its way past IP throttling by
// setting the header itself.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First valid entry is the originating client
			for _, part := range strings.Split(xff, ",") {
				candidate := strings.TrimSpace(part)
				if _, err := netip.ParseAddr(candidate); err == nil {
					return candidate
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if _, err := netip.ParseAddr(xri); err == nil {
				return xri
			}
		}
	}

	return remoteIP
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, cidr := range trustedProxies {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			continue // ignore malformed entries
		}
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}
