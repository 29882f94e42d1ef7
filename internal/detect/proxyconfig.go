package detect

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/rennerdo30/proxydetect/internal/matcher"
)

// Mode is the active routing mode of a ProxyConfig.
type Mode int

// Proxy modes, in the precedence Mode() evaluates them.
const (
	ModeDirect Mode = iota
	ModeAutoDetect
	ModePAC
	ModeFixed
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeAutoDetect:
		return "auto_detect"
	case ModePAC:
		return "pac_script"
	case ModeFixed:
		return "fixed_servers"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ProxyConfig is the normalized proxy configuration produced by a detector.
// Empty strings mean the field is absent.
type ProxyConfig struct {
	AutoDetect    bool   `yaml:"auto_detect" json:"auto_detect"`
	AutoConfigURL string `yaml:"auto_config_url,omitempty" json:"auto_config_url,omitempty"`
	HTTPProxy     string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	Bypass        string `yaml:"bypass,omitempty" json:"bypass,omitempty"`
}

// IsEmpty reports whether no field is set. An empty config means direct
// connections.
func (c ProxyConfig) IsEmpty() bool {
	return !c.AutoDetect && c.AutoConfigURL == "" && c.HTTPProxy == "" &&
		c.HTTPSProxy == "" && c.Bypass == ""
}

// Mode returns the active mode. Sources that layer several modes are reported
// by the most dynamic one.
func (c ProxyConfig) Mode() Mode {
	switch {
	case c.AutoDetect:
		return ModeAutoDetect
	case c.AutoConfigURL != "":
		return ModePAC
	case c.HTTPProxy != "" || c.HTTPSProxy != "":
		return ModeFixed
	default:
		return ModeDirect
	}
}

// String returns a compact single-line representation for diagnostics.
func (c ProxyConfig) String() string {
	parts := []string{"mode=" + c.Mode().String()}
	if c.AutoDetect {
		parts = append(parts, "auto_detect=true")
	}
	if c.AutoConfigURL != "" {
		parts = append(parts, "pac="+c.AutoConfigURL)
	}
	if c.HTTPProxy != "" {
		parts = append(parts, "http="+c.HTTPProxy)
	}
	if c.HTTPSProxy != "" {
		parts = append(parts, "https="+c.HTTPSProxy)
	}
	if c.Bypass != "" {
		parts = append(parts, "bypass="+c.Bypass)
	}
	return strings.Join(parts, " ")
}

// ShouldBypass reports whether host is excluded from proxying by the bypass list.
func (c ProxyConfig) ShouldBypass(host string) bool {
	if c.Bypass == "" {
		return false
	}
	return matcher.NewBypassList(c.Bypass).Match(host)
}

// ProxyForURL returns the fixed proxy (host:port) a request to u should use,
// or "" when the request goes direct. PAC and auto-detect configurations
// return "" since resolving them needs script evaluation.
func (c ProxyConfig) ProxyForURL(u *url.URL) string {
	if u == nil || c.Mode() != ModeFixed || c.ShouldBypass(u.Host) {
		return ""
	}
	if strings.EqualFold(u.Scheme, "https") {
		return c.HTTPSProxy
	}
	return c.HTTPProxy
}

// ParseProxyServer splits a proxy server string into per-scheme host:port
// values. It accepts a bare "host:port" (used for both schemes) and lists of
// "scheme=host:port" entries separated by ';', ',' or whitespace. When only
// an HTTP proxy is named, HTTPS falls back to it. Malformed entries are
// skipped; ErrNotFound is returned when nothing usable remains.
func ParseProxyServer(s string) (httpProxy, httpsProxy string, err error) {
	var bare string
	for _, entry := range strings.FieldsFunc(s, isProxySeparator) {
		scheme, hostport, named := strings.Cut(entry, "=")
		if !named {
			hostport, scheme = entry, ""
		}
		hostport = proxyHostPort(strings.TrimSpace(hostport))
		if hostport == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(scheme)) {
		case "":
			if bare == "" {
				bare = hostport
			}
		case "http":
			httpProxy = hostport
		case "https":
			httpsProxy = hostport
		}
	}

	if bare != "" {
		if httpProxy == "" {
			httpProxy = bare
		}
		if httpsProxy == "" {
			httpsProxy = bare
		}
	}
	if httpsProxy == "" {
		httpsProxy = httpProxy
	}
	if httpProxy == "" && httpsProxy == "" {
		return "", "", notFound(nil, "parse proxy server %q", s)
	}
	return httpProxy, httpsProxy, nil
}

func isProxySeparator(r rune) bool {
	switch r {
	case ';', ',', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// defaultProxyPort is used for proxy entries that name no port, as WinHTTP
// does.
const defaultProxyPort = "80"

// proxyHostPort turns "http://user:pw@host:port/" into "host:port". It
// returns "" when no valid host and port remain.
func proxyHostPort(s string) string {
	if _, rest, ok := strings.Cut(s, "://"); ok {
		s = rest
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		switch {
		case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
			host = s[1 : len(s)-1]
		case strings.Contains(s, ":"):
			return ""
		default:
			host = s
		}
		port = defaultProxyPort
	}
	if host == "" {
		return ""
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return ""
	}
	return net.JoinHostPort(host, port)
}
