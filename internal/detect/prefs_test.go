package detect

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPref(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{`user_pref("network.proxy.type", 1);`, "network.proxy.type", "1", true},
		{`user_pref("network.proxy.http", "10.0.0.1");`, "network.proxy.http", "10.0.0.1", true},
		{`  user_pref( "network.proxy.http_port" , 3128 ) ;`, "network.proxy.http_port", "3128", true},
		{`user_pref("network.proxy.no_proxies_on", "localhost, 127.0.0.1");`, "network.proxy.no_proxies_on", "localhost, 127.0.0.1", true},
		{`user_pref("network.proxy.autoconfig_url", "http://wpad/proxy.pac?a=(b)");`, "network.proxy.autoconfig_url", "http://wpad/proxy.pac?a=(b)", true},
		{`lockPref("network.proxy.type", 4);`, "network.proxy.type", "4", true},
		{`pref('network.proxy.http', 'single');`, "network.proxy.http", "single", true},
		{`"network.proxy.type": 2;`, "network.proxy.type", "2", true},
		{`network.proxy.ssl: "secure";`, "network.proxy.ssl", "secure", true},
		{`network.proxy.type: 1; // manual`, "network.proxy.type", "1", true},
		{`network.proxy.http_port: 3128 ;`, "network.proxy.http_port", "3128", true},
		{`network.proxy.no_proxies_on: "a; b"; // list`, "network.proxy.no_proxies_on", "a; b", true},
		{`network.proxy.http: "say \"hi\"";`, "network.proxy.http", `say "hi"`, true},
		{`# Mozilla User Preferences`, "", "", false},
		{`// comment("network.proxy.type", 1);`, "", "", false},
		{`/* block comment`, "", "", false},
		{` * continued`, "", "", false},
		{``, "", "", false},
		{`user_pref("network.proxy.type" 1);`, "", "", false},
		{`user_pref("network.proxy.type", 1`, "", "", false},
		{`garbage`, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := splitPref(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestParsePrefsLine_IgnoresUnknownKeys(t *testing.T) {
	var f prefsFields
	parsePrefsLine(`user_pref("browser.startup.page", 3);`, &f)
	assert.Equal(t, prefsFields{}, f)

	parsePrefsLine(`user_pref("network.proxy.share_proxy_settings", true);`, &f)
	assert.Equal(t, prefsFields{}, f)
}

func TestBuildProxyString(t *testing.T) {
	tests := []struct {
		name                                 string
		httpHost, httpPort, sslHost, sslPort string
		wantHTTP, wantHTTPS                  string
		wantErr                              bool
	}{
		{"http only", "10.0.0.1", "3128", "", "", "10.0.0.1:3128", "10.0.0.1:3128", false},
		{"both", "a", "80", "b", "443", "a:80", "b:443", false},
		{"ssl without port", "a", "80", "b", "", "a:80", "a:80", false},
		{"ipv6", "::1", "8080", "", "", "[::1]:8080", "[::1]:8080", false},
		{"missing host", "", "80", "b", "443", "", "", true},
		{"zero port", "a", "0", "", "", "", "", true},
		{"port out of range", "a", "70000", "", "", "", "", true},
		{"non numeric port", "a", "http", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpProxy, httpsProxy, err := buildProxyString(tt.httpHost, tt.httpPort, tt.sslHost, tt.sslPort)
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

func parsePrefs(t *testing.T, content string) (ProxyConfig, error) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profile/prefs.js", []byte(content), 0644))
	return parsePrefsFile(fs, "/profile/prefs.js")
}

func TestParsePrefsFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ProxyConfig
		wantErr bool
	}{
		{
			name: "named proxy http only",
			content: `// Mozilla User Preferences
user_pref("network.proxy.http", "10.0.0.1");
user_pref("network.proxy.http_port", 3128);
user_pref("network.proxy.type", 1);
`,
			want: ProxyConfig{HTTPProxy: "10.0.0.1:3128", HTTPSProxy: "10.0.0.1:3128"},
		},
		{
			name: "colon form",
			content: `network.proxy.type: 1;
network.proxy.http: "10.0.0.1";
network.proxy.http_port: 3128;
`,
			want: ProxyConfig{HTTPProxy: "10.0.0.1:3128", HTTPSProxy: "10.0.0.1:3128"},
		},
		{
			name: "colon form with trailing comments",
			content: `network.proxy.type: 2; // auto-config
network.proxy.autoconfig_url: "http://wpad/proxy.pac"; // set by IT
`,
			want: ProxyConfig{AutoConfigURL: "http://wpad/proxy.pac"},
		},
		{
			name: "malformed lines are skipped",
			content: `user_pref("network.proxy.type", 1
network.proxy.type: 1;
user_pref("network.proxy.http" "broken");
user_pref("network.proxy.http", "good");
user_pref("network.proxy.http_port", 8080);
`,
			want: ProxyConfig{HTTPProxy: "good:8080", HTTPSProxy: "good:8080"},
		},
		{
			name: "named proxy with ssl and bypass",
			content: `user_pref("network.proxy.type", 1);
user_pref("network.proxy.http", "plain");
user_pref("network.proxy.http_port", 80);
user_pref("network.proxy.ssl", "secure");
user_pref("network.proxy.ssl_port", 443);
user_pref("network.proxy.no_proxies_on", "localhost, .corp");
`,
			want: ProxyConfig{HTTPProxy: "plain:80", HTTPSProxy: "secure:443", Bypass: "localhost, .corp"},
		},
		{
			name: "auto config url",
			content: `user_pref("network.proxy.type", 2);
user_pref("network.proxy.autoconfig_url", "http://wpad/proxy.pac");
user_pref("network.proxy.http", "ignored");
user_pref("network.proxy.http_port", 80);
`,
			want: ProxyConfig{AutoConfigURL: "http://wpad/proxy.pac"},
		},
		{
			name:    "auto detect",
			content: `user_pref("network.proxy.type", 4);`,
			want:    ProxyConfig{AutoDetect: true},
		},
		{
			name:    "auto config without url",
			content: `user_pref("network.proxy.type", 2);`,
			wantErr: true,
		},
		{
			name:    "named proxy without host",
			content: `user_pref("network.proxy.type", 1);`,
			wantErr: true,
		},
		{
			name:    "no proxy",
			content: `user_pref("network.proxy.type", 0);`,
			wantErr: true,
		},
		{
			name:    "system proxy",
			content: `user_pref("network.proxy.type", 5);`,
			wantErr: true,
		},
		{
			name:    "type absent",
			content: `user_pref("network.proxy.http", "10.0.0.1");`,
			wantErr: true,
		},
		{
			name: "last value wins",
			content: `user_pref("network.proxy.type", 1);
user_pref("network.proxy.type", 4);
`,
			want: ProxyConfig{AutoDetect: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrefs(t, tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrefsFile_LongLine(t *testing.T) {
	content := `user_pref("extensions.blob", "` + strings.Repeat("x", 200*1024) + `");
user_pref("network.proxy.type", 4);
`
	got, err := parsePrefs(t, content)
	require.NoError(t, err)
	assert.True(t, got.AutoDetect)
}

func TestParsePrefsFile_Missing(t *testing.T) {
	_, err := parsePrefsFile(afero.NewMemMapFs(), "/absent/prefs.js")
	assert.ErrorIs(t, err, ErrNotFound)
}
