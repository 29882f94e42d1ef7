package detect

import (
	"bufio"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Firefox network.proxy.type values.
const (
	ProxyTypeNoProxy       = 0
	ProxyTypeNamedProxy    = 1
	ProxyTypeAutoConfigURL = 2
	ProxyTypeAutoDetect    = 4
)

// Preference keys read from prefs.js.
const (
	prefProxyType   = "network.proxy.type"
	prefAutoConfig  = "network.proxy.autoconfig_url"
	prefHTTPHost    = "network.proxy.http"
	prefHTTPPort    = "network.proxy.http_port"
	prefSSLHost     = "network.proxy.ssl"
	prefSSLPort     = "network.proxy.ssl_port"
	prefNoProxiesOn = "network.proxy.no_proxies_on"
)

const maxPrefsLineSize = 1 << 20

// prefsFields accumulates the recognized preferences of one file.
type prefsFields struct {
	proxyType   string
	autoConfig  string
	httpHost    string
	httpPort    string
	sslHost     string
	sslPort     string
	noProxiesOn string
}

// parsePrefsFile reads a preferences file and builds the proxy configuration
// it describes. Unreadable files and unusable settings report ErrNotFound.
func parsePrefsFile(fs afero.Fs, path string) (ProxyConfig, error) {
	f, err := fs.Open(path)
	if err != nil {
		return ProxyConfig{}, notFound(err, "open prefs file %s", path)
	}
	defer f.Close()

	var fields prefsFields
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxPrefsLineSize)
	for sc.Scan() {
		parsePrefsLine(sc.Text(), &fields)
	}
	if err := sc.Err(); err != nil {
		return ProxyConfig{}, notFound(err, "read prefs file %s", path)
	}
	return fields.config()
}

func (f prefsFields) config() (ProxyConfig, error) {
	proxyType, err := strconv.Atoi(f.proxyType)
	if err != nil {
		return ProxyConfig{}, notFound(nil, "proxy type %q", f.proxyType)
	}

	switch proxyType {
	case ProxyTypeNamedProxy:
		httpProxy, httpsProxy, err := buildProxyString(f.httpHost, f.httpPort, f.sslHost, f.sslPort)
		if err != nil {
			return ProxyConfig{}, err
		}
		return ProxyConfig{HTTPProxy: httpProxy, HTTPSProxy: httpsProxy, Bypass: f.noProxiesOn}, nil
	case ProxyTypeAutoConfigURL:
		if f.autoConfig == "" {
			return ProxyConfig{}, notFound(nil, "auto-config type without url")
		}
		return ProxyConfig{AutoConfigURL: f.autoConfig}, nil
	case ProxyTypeAutoDetect:
		return ProxyConfig{AutoDetect: true}, nil
	default:
		return ProxyConfig{}, notFound(nil, "proxy type %d", proxyType)
	}
}

// parsePrefsLine extracts at most one recognized preference from line. Both
// user_pref("key", value); and key: value; shapes are accepted. Anything
// else is ignored.
func parsePrefsLine(line string, f *prefsFields) {
	key, value, ok := splitPref(line)
	if !ok {
		return
	}

	switch key {
	case prefProxyType:
		f.proxyType = value
	case prefAutoConfig:
		f.autoConfig = value
	case prefHTTPHost:
		f.httpHost = value
	case prefHTTPPort:
		f.httpPort = value
	case prefSSLHost:
		f.sslHost = value
	case prefSSLPort:
		f.sslPort = value
	case prefNoProxiesOn:
		f.noProxiesOn = value
	}
}

func splitPref(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
		return "", "", false
	}

	if call, rest, found := strings.Cut(line, "("); found && isPrefCall(call) {
		end := strings.LastIndex(rest, ")")
		if end < 0 {
			return "", "", false
		}
		key, value, found = strings.Cut(rest[:end], ",")
		if !found {
			return "", "", false
		}
	} else {
		key, value, found = strings.Cut(line, ":")
		if !found {
			return "", "", false
		}
		value = colonPrefValue(value)
	}

	key = unquotePref(key)
	if key == "" {
		return "", "", false
	}
	return key, unquotePref(value), true
}

// colonPrefValue returns the value of a "key: value;" line up to its ';'.
// A quoted value is kept whole even when it contains ';'.
func colonPrefValue(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case s[0]:
				return s[:i+1]
			}
		}
		return s
	}
	v, _, _ := strings.Cut(s, ";")
	return strings.TrimSpace(v)
}

func isPrefCall(name string) bool {
	switch strings.TrimSpace(name) {
	case "user_pref", "pref", "sticky_pref", "lockPref":
		return true
	}
	return false
}

func unquotePref(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	switch s[0] {
	case '"':
		if s[len(s)-1] != '"' {
			return s
		}
		if u, err := strconv.Unquote(s); err == nil {
			return strings.TrimSpace(u)
		}
		return strings.TrimSpace(s[1 : len(s)-1])
	case '\'':
		if s[len(s)-1] != '\'' {
			return s
		}
		return strings.TrimSpace(strings.ReplaceAll(s[1:len(s)-1], `\'`, `'`))
	}
	return s
}

// buildProxyString combines the HTTP and SSL host/port pairs into per-scheme
// host:port values. Missing SSL settings fall back to the HTTP ones.
func buildProxyString(httpHost, httpPort, sslHost, sslPort string) (httpProxy, httpsProxy string, err error) {
	if !validHostPort(httpHost, httpPort) {
		return "", "", notFound(nil, "incomplete http proxy %q:%q", httpHost, httpPort)
	}
	httpProxy = net.JoinHostPort(httpHost, httpPort)
	httpsProxy = httpProxy
	if validHostPort(sslHost, sslPort) {
		httpsProxy = net.JoinHostPort(sslHost, sslPort)
	}
	return httpProxy, httpsProxy, nil
}

func validHostPort(host, port string) bool {
	if host == "" {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p > 0 && p <= 65535
}
