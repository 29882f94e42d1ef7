package detect

import (
	"fmt"
	"net"
	"os/exec"
	"strings"
)

// commandRunner runs an external command and returns its standard output.
type commandRunner func(name string, args ...string) (string, error)

func execCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// gnomeProxySettings reads the GNOME desktop proxy settings through gsettings.
type gnomeProxySettings struct {
	run commandRunner
}

func (g gnomeProxySettings) get(schema, key string) (string, error) {
	return g.run("gsettings", "get", schema, key)
}

func (g gnomeProxySettings) Query() (InternetSettings, error) {
	mode, err := g.get("org.gnome.system.proxy", "mode")
	if err != nil {
		return InternetSettings{}, err
	}

	switch parseGVariantString(mode) {
	case "auto":
		pac, _ := g.get("org.gnome.system.proxy", "autoconfig-url")
		if url := parseGVariantString(pac); url != "" {
			return InternetSettings{AutoConfigURL: url}, nil
		}
		return InternetSettings{AutoDetect: true}, nil
	case "manual":
		var entries []string
		for _, scheme := range []string{"http", "https"} {
			if hp := g.hostPort("org.gnome.system.proxy." + scheme); hp != "" {
				entries = append(entries, scheme+"="+hp)
			}
		}
		ignore, _ := g.get("org.gnome.system.proxy", "ignore-hosts")
		return InternetSettings{
			Proxy:  strings.Join(entries, ";"),
			Bypass: strings.Join(parseGVariantStringList(ignore), ","),
		}, nil
	default:
		return InternetSettings{}, nil
	}
}

func (g gnomeProxySettings) hostPort(schema string) string {
	host, err := g.get(schema, "host")
	if err != nil {
		return ""
	}
	port, err := g.get(schema, "port")
	if err != nil {
		return ""
	}
	h, p := parseGVariantString(host), parseGVariantString(port)
	if h == "" || p == "" || p == "0" {
		return ""
	}
	return net.JoinHostPort(h, p)
}

// parseGVariantString decodes a GVariant text value such as 'manual' or
// "uint32 8080".
func parseGVariantString(s string) string {
	s = strings.TrimSpace(s)
	if typ, rest, ok := strings.Cut(s, " "); ok && isGVariantType(typ) {
		s = strings.TrimSpace(rest)
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		q := s[0]
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, `\`+string(q), string(q))
	}
	return s
}

func isGVariantType(t string) bool {
	switch t {
	case "@as", "uint32", "int32", "byte", "int16", "uint16", "int64", "uint64":
		return true
	}
	return false
}

// parseGVariantStringList decodes an array of strings such as
// ['localhost', '127.0.0.0/8'] or @as [].
func parseGVariantStringList(s string) []string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@as"))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var out []string
	for _, item := range strings.Split(s, ",") {
		if v := parseGVariantString(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
