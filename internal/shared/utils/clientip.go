package utils

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is recorded when no trusted header carries a client address.
const UnknownIP = "unknown"

// ClientIPResolver extracts the client address from headers set by the
// proxy chain in front of the service. RemoteAddr is deliberately ignored:
// behind a load balancer it is always the balancer.
type ClientIPResolver struct {
	TrustedProxyHeader string
	CDNHeader          string
}

// Resolve prefers the trusted proxy header (first hop), then the CDN header,
// then UnknownIP. It never fails.
func (r ClientIPResolver) Resolve(h http.Header) string {
	if r.TrustedProxyHeader != "" {
		if ip := firstValidIP(h.Get(r.TrustedProxyHeader)); ip != "" {
			return ip
		}
	}
	if r.CDNHeader != "" {
		if ip := firstValidIP(h.Get(r.CDNHeader)); ip != "" {
			return ip
		}
	}
	return UnknownIP
}

func firstValidIP(v string) string {
	if v == "" {
		return ""
	}
	first, _, _ := strings.Cut(v, ",")
	first = strings.TrimSpace(first)
	if host, _, err := net.SplitHostPort(first); err == nil {
		first = host
	}
	if ip := net.ParseIP(first); ip != nil {
		return ip.String()
	}
	return ""
}
