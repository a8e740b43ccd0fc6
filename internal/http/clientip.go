package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver derives the caller address of a request.
type ClientIPResolver struct {
	// TrustProxy makes the first X-Forwarded-For entry take precedence over
	// the connection address.
	TrustProxy bool
}

// Resolve returns the caller address in canonical form, or nil when no
// parseable address is available. An unparseable forwarded entry falls back
// to the connection address.
func (c ClientIPResolver) Resolve(r *http.Request) *string {
	if r == nil {
		return nil
	}
	if c.TrustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := parseIP(stripPort(first)); ip != nil {
				return ip
			}
		}
	}
	return parseIP(stripPort(r.RemoteAddr))
}

// ResolveClientIP stores the resolved caller address in the request context.
func ResolveClientIP(resolver ClientIPResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithClientIP(r.Context(), resolver.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stripPort(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func parseIP(value string) *string {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if value == "" {
		return nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return nil
	}
	canonical := addr.Unmap().WithZone("").String()
	return &canonical
}
