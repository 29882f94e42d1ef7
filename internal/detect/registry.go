package detect

import (
	"strings"

	"github.com/rennerdo30/proxydetect/internal/logging"
)

// Registry-like key paths the override detectors are bound to.
const (
	UpdateDevKeyPath       = `HKLM\SOFTWARE\Bifrost\UpdateDev`
	ProductOverrideKeyPath = `HKLM\SOFTWARE\Bifrost\Proxy`
)

// Value names read from an override key.
const (
	ValueProxyServer     = "ProxyServer"
	ValueProxyPacURL     = "ProxyPacUrl"
	ValueProxyAutoDetect = "ProxyAutoDetect"
	ValueProxyBypass     = "ProxyBypass"
)

// KeyReader reads values from a registry-like hierarchical store. A missing
// key or value is reported as an error; callers treat every error as absence.
type KeyReader interface {
	ReadString(path, name string) (string, error)
	ReadDWORD(path, name string) (uint32, error)
}

// RegistryOverrideDetector returns a proxy override stored under a fixed key.
type RegistryOverrideDetector struct {
	reader KeyReader
	path   string
	source string
}

// NewRegistryOverrideDetector creates a detector bound to path.
func NewRegistryOverrideDetector(reader KeyReader, path string) *RegistryOverrideDetector {
	return newOverrideDetector(reader, path, SourceRegistryOverride)
}

// NewUpdateDevDetector creates the developer/debug override detector.
func NewUpdateDevDetector(reader KeyReader) *RegistryOverrideDetector {
	return newOverrideDetector(reader, UpdateDevKeyPath, SourceUpdateDev)
}

// NewProductOverrideDetector creates the product-wide override detector.
func NewProductOverrideDetector(reader KeyReader) *RegistryOverrideDetector {
	return newOverrideDetector(reader, ProductOverrideKeyPath, SourceRegistryOverride)
}

func newOverrideDetector(reader KeyReader, path, source string) *RegistryOverrideDetector {
	if reader == nil {
		panic("detect: nil KeyReader")
	}
	return &RegistryOverrideDetector{reader: reader, path: path, source: source}
}

// Source implements Detector.
func (d *RegistryOverrideDetector) Source() string { return d.source }

// Path returns the key path the detector reads.
func (d *RegistryOverrideDetector) Path() string { return d.path }

// Detect implements Detector.
func (d *RegistryOverrideDetector) Detect() (ProxyConfig, error) {
	logger := logging.WithComponent("detect").With("source", d.source, "path", d.path)

	var cfg ProxyConfig
	if v, err := d.reader.ReadDWORD(d.path, ValueProxyAutoDetect); err == nil && v != 0 {
		cfg.AutoDetect = true
	}
	if pac, err := d.reader.ReadString(d.path, ValueProxyPacURL); err == nil {
		cfg.AutoConfigURL = strings.TrimSpace(pac)
	}
	if server, err := d.reader.ReadString(d.path, ValueProxyServer); err == nil && strings.TrimSpace(server) != "" {
		httpProxy, httpsProxy, perr := ParseProxyServer(server)
		if perr != nil {
			logger.Debug("ignoring malformed proxy server value", "value", server, "error", perr)
		} else {
			cfg.HTTPProxy, cfg.HTTPSProxy = httpProxy, httpsProxy
			if bypass, err := d.reader.ReadString(d.path, ValueProxyBypass); err == nil {
				cfg.Bypass = strings.TrimSpace(bypass)
			}
		}
	}

	if cfg.Mode() == ModeDirect {
		return ProxyConfig{}, notFound(nil, "%s: no override under %s", d.source, d.path)
	}
	return cfg, nil
}
