// Package sysproxy writes and clears the product proxy override that the
// RegistryOverride detector reads.
package sysproxy

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rennerdo30/proxydetect/internal/config"
	"github.com/rennerdo30/proxydetect/internal/detect"
)

// Manager allows managing the product proxy override.
type Manager interface {
	// SetOverride stores cfg as the product override, replacing any
	// previous one.
	SetOverride(cfg detect.ProxyConfig) error
	// ClearOverride removes the product override.
	ClearOverride() error
}

// ErrNotSupported is returned when the platform has no override store and
// no override file was configured.
var ErrNotSupported = errors.New("proxy override store not supported on this platform")

// New returns a manager for overrideFile, or for the platform store when
// overrideFile is empty.
func New(overrideFile string) Manager {
	if overrideFile != "" {
		return &fileManager{path: overrideFile}
	}
	return newPlatformManager()
}

// values renders cfg as the named values of an override key.
func values(cfg detect.ProxyConfig) map[string]string {
	v := make(map[string]string)
	if cfg.AutoDetect {
		v[detect.ValueProxyAutoDetect] = "1"
	}
	if cfg.AutoConfigURL != "" {
		v[detect.ValueProxyPacURL] = cfg.AutoConfigURL
	}
	if server := formatServer(cfg.HTTPProxy, cfg.HTTPSProxy); server != "" {
		v[detect.ValueProxyServer] = server
		if cfg.Bypass != "" {
			v[detect.ValueProxyBypass] = cfg.Bypass
		}
	}
	return v
}

// formatServer is the inverse of detect.ParseProxyServer.
func formatServer(httpProxy, httpsProxy string) string {
	switch {
	case httpProxy == "" && httpsProxy == "":
		return ""
	case httpsProxy == "" || httpProxy == httpsProxy:
		return httpProxy
	case httpProxy == "":
		return "https=" + httpsProxy
	default:
		return "http=" + httpProxy + ";https=" + httpsProxy
	}
}

// fileManager keeps the override in a config.OverrideDocument. Keys other
// than the product override are preserved.
type fileManager struct {
	path string
}

func (m *fileManager) load() (config.OverrideDocument, error) {
	var doc config.OverrideDocument
	if err := config.LoadDocument(m.path, &doc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return doc, err
	}
	if doc.Keys == nil {
		doc.Keys = make(map[string]map[string]string)
	}
	for k := range doc.Keys {
		if strings.EqualFold(k, detect.ProductOverrideKeyPath) {
			delete(doc.Keys, k)
		}
	}
	return doc, nil
}

func (m *fileManager) SetOverride(cfg detect.ProxyConfig) error {
	v := values(cfg)
	if len(v) == 0 {
		return fmt.Errorf("override %s selects direct connections; use ClearOverride", cfg)
	}
	doc, err := m.load()
	if err != nil {
		return err
	}
	doc.Keys[detect.ProductOverrideKeyPath] = v
	return config.Save(m.path, &doc)
}

func (m *fileManager) ClearOverride() error {
	doc, err := m.load()
	if err != nil {
		return err
	}
	return config.Save(m.path, &doc)
}
