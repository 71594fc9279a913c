package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxy headers, in order of preference
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ParseHostNoPort strips an optional port: "ip:port", "[v6]:port" and bare
// hosts are all accepted.
func ParseHostNoPort(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}

// ClientIP resolves the address rate limits and CIDR rules apply to.
// Proxy headers are only read when trustProxy is set, and a header value
// that is not an IP address is ignored. X-Forwarded-For contributes its
// left-most entry.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range clientIPHeaders {
			v := r.Header.Get(h)
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if addr, ok := parseAddr(v); ok {
				return addr.String()
			}
		}
	}
	return ParseHostNoPort(r.RemoteAddr)
}

func parseAddr(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(ParseHostNoPort(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// IPMatcher matches addresses against a set of prefixes. A bare IP is
// stored as a single-address prefix.
type IPMatcher struct {
	prefixes []netip.Prefix
	invalid  []string
}

func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, ok := parseAddr(s); ok {
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		m.invalid = append(m.invalid, s)
	}
	return m
}

// IsEmpty reports whether no rule was accepted.
func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Len is the number of accepted rules.
func (m *IPMatcher) Len() int { return len(m.prefixes) }

// Invalid lists the entries that were neither an IP nor a CIDR.
func (m *IPMatcher) Invalid() []string { return m.invalid }

func (m *IPMatcher) Allow(ip string) bool {
	addr, ok := parseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
