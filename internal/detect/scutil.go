package detect

import (
	"bufio"
	"net"
	"strings"
)

// scutilProxySettings reads the macOS network proxy settings through
// "scutil --proxy".
type scutilProxySettings struct {
	run commandRunner
}

func (s scutilProxySettings) Query() (InternetSettings, error) {
	out, err := s.run("scutil", "--proxy")
	if err != nil {
		return InternetSettings{}, err
	}
	return parseScutilProxy(out), nil
}

// parseScutilProxy parses the dictionary dump printed by scutil --proxy.
func parseScutilProxy(out string) InternetSettings {
	values := make(map[string]string)
	var exceptions []string
	inExceptions := false

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if inExceptions {
			if line == "}" {
				inExceptions = false
				continue
			}
			if _, v, ok := strings.Cut(line, " : "); ok {
				exceptions = append(exceptions, strings.TrimSpace(v))
			}
			continue
		}
		key, v, ok := strings.Cut(line, " : ")
		if !ok {
			continue
		}
		key, v = strings.TrimSpace(key), strings.TrimSpace(v)
		if key == "ExceptionsList" && strings.HasPrefix(v, "<array>") {
			inExceptions = true
			continue
		}
		values[key] = v
	}

	settings := InternetSettings{
		AutoDetect: values["ProxyAutoDiscoveryEnable"] == "1",
	}
	if values["ProxyAutoConfigEnable"] == "1" {
		settings.AutoConfigURL = values["ProxyAutoConfigURLString"]
	}

	var entries []string
	for _, p := range []struct{ scheme, prefix string }{{"http", "HTTP"}, {"https", "HTTPS"}} {
		if values[p.prefix+"Enable"] != "1" {
			continue
		}
		host, port := values[p.prefix+"Proxy"], values[p.prefix+"Port"]
		if host == "" || port == "" {
			continue
		}
		entries = append(entries, p.scheme+"="+net.JoinHostPort(host, port))
	}
	if len(entries) > 0 {
		settings.Proxy = strings.Join(entries, ";")
		settings.Bypass = strings.Join(exceptions, ",")
	}
	return settings
}
