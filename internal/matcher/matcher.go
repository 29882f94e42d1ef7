// Package matcher matches hosts against proxy bypass lists.
package matcher

import (
	"errors"
	"net"
	"net/netip"
	"strings"
)

// MaxPatterns is the maximum number of patterns a Matcher holds.
const MaxPatterns = 5000

// LocalToken matches every host name without a dot.
const LocalToken = "<local>"

// Matcher errors
var (
	ErrPatternsAtLimit  = errors.New("matcher: patterns at maximum limit")
	ErrDuplicatePattern = errors.New("matcher: duplicate pattern")
)

// Matcher matches hosts against bypass patterns.
type Matcher struct {
	patterns []pattern
	local    bool
}

type pattern struct {
	original string
	parts    []string
	prefix   netip.Prefix
	isPrefix bool // IP or CIDR
	isWild   bool // starts with *. (wildcard subdomain)
	isSuffix bool // starts with .
	hasGlob  bool // contains glob wildcards within parts (e.g., sf-*)
}

// New creates a Matcher with the given patterns. Invalid or duplicate
// patterns are skipped.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		_ = m.AddPattern(p)
	}
	return m
}

// NewBypassList parses a bypass list as found in proxy settings: patterns
// separated by ';', ',' or whitespace.
func NewBypassList(list string) *Matcher {
	return New(SplitList(list))
}

// SplitList splits a bypass list into its patterns.
func SplitList(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		switch r {
		case ';', ',', ' ', '\t', '\r', '\n':
			return true
		}
		return false
	})
}

// AddPattern adds a pattern. Pattern formats:
//   - "example.com" - exact match
//   - "*.example.com" - wildcard subdomain match
//   - ".example.com" - suffix match (matches example.com and *.example.com)
//   - "*" - match all
//   - "sf-*.example.com" - glob match within a label
//   - "10.0.0.0/8", "::1" - IP prefix or address
//   - "<local>" - any host name without a dot
func (m *Matcher) AddPattern(p string) error {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return nil
	}
	if p == LocalToken {
		m.local = true
		return nil
	}

	for _, existing := range m.patterns {
		if existing.original == p {
			return ErrDuplicatePattern
		}
	}
	if len(m.patterns) >= MaxPatterns {
		return ErrPatternsAtLimit
	}

	pat := pattern{original: p}
	if prefix, ok := parsePrefix(p); ok {
		pat.isPrefix = true
		pat.prefix = prefix
		m.patterns = append(m.patterns, pat)
		return nil
	}

	if p == "*" {
		pat.isWild = true
		m.patterns = append(m.patterns, pat)
		return nil
	}

	// Port qualifiers such as "example.com:8080" are ignored.
	if host, _, err := net.SplitHostPort(p); err == nil {
		p = host
	}

	if strings.HasPrefix(p, "*.") {
		pat.isWild = true
		p = p[2:]
	} else if strings.HasPrefix(p, ".") {
		pat.isSuffix = true
		p = p[1:]
	}

	pat.parts = strings.Split(p, ".")
	for _, part := range pat.parts {
		if strings.Contains(part, "*") {
			pat.hasGlob = true
			break
		}
	}

	m.patterns = append(m.patterns, pat)
	return nil
}

func parsePrefix(p string) (netip.Prefix, bool) {
	if prefix, err := netip.ParsePrefix(p); err == nil {
		return prefix.Masked(), true
	}
	if addr, err := netip.ParseAddr(strings.Trim(p, "[]")); err == nil {
		return netip.PrefixFrom(addr, addr.BitLen()), true
	}
	return netip.Prefix{}, false
}

// Match checks if host matches any pattern. host may carry a port.
func (m *Matcher) Match(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	addr, addrErr := netip.ParseAddr(host)
	isAddr := addrErr == nil

	if m.local && !isAddr && !strings.Contains(host, ".") {
		return true
	}

	hostParts := strings.Split(host, ".")
	for _, pat := range m.patterns {
		if pat.isPrefix {
			if isAddr && pat.prefix.Contains(addr.Unmap()) {
				return true
			}
			continue
		}
		if matchPattern(pat, hostParts) {
			return true
		}
	}
	return false
}

// Patterns returns all registered patterns, with LocalToken last if set.
func (m *Matcher) Patterns() []string {
	result := make([]string, 0, len(m.patterns)+1)
	for _, p := range m.patterns {
		result = append(result, p.original)
	}
	if m.local {
		result = append(result, LocalToken)
	}
	return result
}

// matchGlobPart checks if a host label matches a glob pattern label.
// Examples:
//   - "sf-*" matches "sf-abc", "sf-xyz"
//   - "*-api" matches "backend-api", "frontend-api"
//   - "pre-*-suf" matches "pre-middle-suf"
func matchGlobPart(pattern, value string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}
	if pattern == "*" {
		return true
	}

	segments := strings.Split(pattern, "*")
	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(value[pos:], seg)
		if idx == -1 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}

	if last := segments[len(segments)-1]; last != "" && !strings.HasSuffix(value, last) {
		return false
	}
	return true
}

func matchParts(pat pattern, hostParts []string, offset int) bool {
	for i, part := range pat.parts {
		if pat.hasGlob {
			if !matchGlobPart(part, hostParts[offset+i]) {
				return false
			}
		} else if hostParts[offset+i] != part {
			return false
		}
	}
	return true
}

// matchPattern checks if host labels match a single name pattern.
func matchPattern(pat pattern, hostParts []string) bool {
	switch {
	case pat.isWild && len(pat.parts) == 0:
		return true
	case pat.isSuffix:
		if len(hostParts) < len(pat.parts) {
			return false
		}
		return matchParts(pat, hostParts, len(hostParts)-len(pat.parts))
	case pat.isWild:
		if len(hostParts) <= len(pat.parts) {
			return false
		}
		return matchParts(pat, hostParts, len(hostParts)-len(pat.parts))
	default:
		if len(hostParts) != len(pat.parts) {
			return false
		}
		return matchParts(pat, hostParts, 0)
	}
}
