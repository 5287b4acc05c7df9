package collector

import (
	"net"
	"net/http"
	"strings"
)

// ChooseClientIP derives the best-guess client address for an inbound
// request and returns it along with the raw X-Forwarded-For and X-Real-IP
// values for forensics.
//
// Precedence when proxy headers are trusted: the left-most X-Forwarded-For
// entry, then CF-Connecting-IP, then True-Client-IP, then X-Real-IP, then
// the transport peer address. None of these headers is verified — any of
// them can be spoofed by a direct client unless a trusted reverse proxy
// strips or overwrites them upstream. Deployments exposed directly to the
// internet should set trustProxyHeaders to false, which pins attribution
// to the transport peer while still recording the raw header values.
func ChooseClientIP(r *http.Request, trustProxyHeaders bool) (ip, xff, xri string) {
	xff = r.Header.Get("X-Forwarded-For")
	xri = r.Header.Get("X-Real-IP")

	if trustProxyHeaders {
		if xff != "" {
			// XFF can be "client, proxy1, proxy2"; the left-most entry is
			// the client-asserted origin.
			if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
				return first, xff, xri
			}
		}
		if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
			return cf, xff, xri
		}
		if tci := strings.TrimSpace(r.Header.Get("True-Client-IP")); tci != "" {
			return tci, xff, xri
		}
		if v := strings.TrimSpace(xri); v != "" {
			return v, xff, xri
		}
	}

	return peerAddress(r), xff, xri
}

// peerAddress strips the port from the transport-level remote address.
func peerAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
