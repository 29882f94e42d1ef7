package detect

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyServer(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantHTTP  string
		wantHTTPS string
		wantErr   bool
	}{
		{"bare host port", "proxy.example.com:8080", "proxy.example.com:8080", "proxy.example.com:8080", false},
		{"per scheme", "http=1.2.3.4:80;https=1.2.3.4:443", "1.2.3.4:80", "1.2.3.4:443", false},
		{"http only", "http=proxy:3128", "proxy:3128", "proxy:3128", false},
		{"https only", "https=secure:443", "", "secure:443", false},
		{"url form", "http://proxy:3128/", "proxy:3128", "proxy:3128", false},
		{"comma and spaces", " http=a:1 , https=b:2 ", "a:1", "b:2", false},
		{"scheme case", "HTTP=a:1;HTTPS=b:2", "a:1", "b:2", false},
		{"named wins over bare", "fallback:1;https=b:2", "fallback:1", "b:2", false},
		{"unknown scheme only", "ftp=f:21", "", "", true},
		{"socks ignored", "socks=s:1080;http=a:1", "a:1", "a:1", false},
		{"empty", "", "", "", true},
		{"separators only", " ;; , ", "", "", true},
		{"empty value", "http=", "", "", true},
		{"userinfo dropped", "http=http://user:pw@h:80", "h:80", "h:80", false},
		{"url with path", "https://user@secure:8443/path", "secure:8443", "secure:8443", false},
		{"default port", "proxy", "proxy:80", "proxy:80", false},
		{"bracketed ipv6", "http=[::1]:3128;https=[::1]", "[::1]:3128", "[::1]:80", false},
		{"bad port", "http=h:http", "", "", true},
		{"port out of range", "h:70000", "", "", true},
		{"empty port", "h:", "", "", true},
		{"bare ipv6", "::1", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpProxy, httpsProxy, err := ParseProxyServer(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHTTP, httpProxy)
			assert.Equal(t, tt.wantHTTPS, httpsProxy)
		})
	}
}

func TestProxyConfigMode(t *testing.T) {
	tests := []struct {
		name   string
		config ProxyConfig
		want   Mode
	}{
		{"empty", ProxyConfig{}, ModeDirect},
		{"bypass only", ProxyConfig{Bypass: "<local>"}, ModeDirect},
		{"auto detect", ProxyConfig{AutoDetect: true}, ModeAutoDetect},
		{"pac", ProxyConfig{AutoConfigURL: "http://wpad/wpad.dat"}, ModePAC},
		{"fixed", ProxyConfig{HTTPProxy: "p:80"}, ModeFixed},
		{"auto detect beats pac", ProxyConfig{AutoDetect: true, AutoConfigURL: "http://x/"}, ModeAutoDetect},
		{"pac beats fixed", ProxyConfig{AutoConfigURL: "http://x/", HTTPProxy: "p:80"}, ModePAC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.Mode())
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "direct", ModeDirect.String())
	assert.Equal(t, "auto_detect", ModeAutoDetect.String())
	assert.Equal(t, "pac_script", ModePAC.String())
	assert.Equal(t, "fixed_servers", ModeFixed.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestProxyConfigIsEmpty(t *testing.T) {
	assert.True(t, ProxyConfig{}.IsEmpty())
	assert.False(t, ProxyConfig{Bypass: "localhost"}.IsEmpty())
	assert.False(t, ProxyConfig{AutoDetect: true}.IsEmpty())
}

func TestProxyConfigString(t *testing.T) {
	cfg := ProxyConfig{HTTPProxy: "a:1", HTTPSProxy: "b:2", Bypass: "<local>"}
	assert.Equal(t, "mode=fixed_servers http=a:1 https=b:2 bypass=<local>", cfg.String())
	assert.Equal(t, "mode=direct", ProxyConfig{}.String())
}

func TestShouldBypass(t *testing.T) {
	cfg := ProxyConfig{HTTPProxy: "p:80", Bypass: "*.corp.example.com;10.0.0.0/8;<local>"}

	assert.True(t, cfg.ShouldBypass("git.corp.example.com"))
	assert.True(t, cfg.ShouldBypass("10.1.2.3:8443"))
	assert.True(t, cfg.ShouldBypass("intranet"))
	assert.False(t, cfg.ShouldBypass("example.com"))
	assert.False(t, ProxyConfig{HTTPProxy: "p:80"}.ShouldBypass("intranet"))
}

func TestProxyForURL(t *testing.T) {
	cfg := ProxyConfig{HTTPProxy: "plain:80", HTTPSProxy: "secure:443", Bypass: "localhost"}

	mustParse := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	}

	assert.Equal(t, "plain:80", cfg.ProxyForURL(mustParse("http://example.com/")))
	assert.Equal(t, "secure:443", cfg.ProxyForURL(mustParse("https://example.com/")))
	assert.Equal(t, "", cfg.ProxyForURL(mustParse("http://localhost:8080/")))
	assert.Equal(t, "", cfg.ProxyForURL(nil))
	assert.Equal(t, "", ProxyConfig{AutoConfigURL: "http://wpad/"}.ProxyForURL(mustParse("http://example.com/")))
}
