package detect

import (
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"
)

// DefaultProxyFunc queries the system-wide proxy settings of the OS.
type DefaultProxyFunc func() (ProxyConfig, error)

// DefaultDetector returns the OS system-wide proxy settings without
// reinterpreting them.
type DefaultDetector struct {
	query DefaultProxyFunc
}

// NewDefaultDetector creates a detector over the platform proxy service.
func NewDefaultDetector() *DefaultDetector {
	return NewDefaultDetectorWith(systemDefaultProxy)
}

// NewDefaultDetectorWith creates a detector over query.
func NewDefaultDetectorWith(query DefaultProxyFunc) *DefaultDetector {
	if query == nil {
		panic("detect: nil DefaultProxyFunc")
	}
	return &DefaultDetector{query: query}
}

// Source implements Detector.
func (d *DefaultDetector) Source() string { return SourceDefault }

// Detect implements Detector.
func (d *DefaultDetector) Detect() (ProxyConfig, error) {
	cfg, err := d.query()
	if err != nil {
		if IsNotFound(err) {
			return ProxyConfig{}, err
		}
		return ProxyConfig{}, notFound(err, "query default proxy")
	}
	if cfg.Mode() == ModeDirect {
		return ProxyConfig{}, notFound(nil, "no default proxy")
	}
	return cfg, nil
}

// EnvironmentProxy reads HTTP_PROXY, HTTPS_PROXY and NO_PROXY (and their
// lower-case forms) from the process environment.
func EnvironmentProxy() (ProxyConfig, error) {
	return configFromEnvironment(httpproxy.FromEnvironment()), nil
}

func configFromEnvironment(env *httpproxy.Config) ProxyConfig {
	return ProxyConfig{
		HTTPProxy:  hostPortFromProxyURL(env.HTTPProxy),
		HTTPSProxy: hostPortFromProxyURL(env.HTTPSProxy),
		Bypass:     strings.TrimSpace(env.NoProxy),
	}
}

// hostPortFromProxyURL accepts "http://user@host:port/" as well as a bare
// "host:port" and returns host:port.
func hostPortFromProxyURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}
