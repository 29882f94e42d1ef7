package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rennerdo30/proxydetect/internal/detect"
)

// ErrValueNotFound is returned when a key or value is absent from a store.
var ErrValueNotFound = errors.New("value not found")

// OverrideDocument maps key paths to named values, mirroring the registry
// layout the override detectors expect:
//
//	keys:
//	  'HKLM\SOFTWARE\Bifrost\UpdateDev':
//	    ProxyServer: proxy.example.com:8080
type OverrideDocument struct {
	Keys map[string]map[string]string `yaml:"keys" json:"keys"`
}

// OverrideFile is a detect.KeyReader over an OverrideDocument on disk. The
// file is read on every lookup so edits apply without a restart.
type OverrideFile struct {
	Path string
}

func (f OverrideFile) lookup(path, name string) (string, error) {
	var doc OverrideDocument
	if err := LoadDocument(f.Path, &doc); err != nil {
		return "", err
	}
	for k, values := range doc.Keys {
		if !strings.EqualFold(k, path) {
			continue
		}
		for n, v := range values {
			if strings.EqualFold(n, name) {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("%s %s: %w", path, name, ErrValueNotFound)
}

// ReadString implements detect.KeyReader.
func (f OverrideFile) ReadString(path, name string) (string, error) {
	return f.lookup(path, name)
}

// ReadDWORD implements detect.KeyReader. Besides numbers, the YAML
// booleans true and false read as 1 and 0.
func (f OverrideFile) ReadDWORD(path, name string) (uint32, error) {
	v, err := f.lookup(path, name)
	if err != nil {
		return 0, err
	}
	v = strings.TrimSpace(v)
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		if b, berr := strconv.ParseBool(v); berr == nil {
			if b {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("%s %s: not a DWORD: %w", path, name, err)
	}
	return uint32(n), nil
}

// PolicyDocument is an administrator proxy policy.
type PolicyDocument struct {
	Managed     bool   `yaml:"managed" json:"managed"`
	ProxyMode   string `yaml:"proxy_mode,omitempty" json:"proxy_mode,omitempty"`
	ProxyPacURL string `yaml:"proxy_pac_url,omitempty" json:"proxy_pac_url,omitempty"`
	ProxyServer string `yaml:"proxy_server,omitempty" json:"proxy_server,omitempty"`
}

// PolicyFile is a detect.PolicySource over a PolicyDocument on disk. A
// missing or unreadable file means the machine is not managed.
type PolicyFile struct {
	Path string
}

func (f PolicyFile) load() (PolicyDocument, error) {
	var doc PolicyDocument
	if f.Path == "" {
		return doc, ErrValueNotFound
	}
	err := LoadDocument(f.Path, &doc)
	return doc, err
}

// IsManaged implements detect.PolicySource.
func (f PolicyFile) IsManaged() bool {
	doc, err := f.load()
	return err == nil && doc.Managed
}

// Mode implements detect.PolicySource.
func (f PolicyFile) Mode() (string, error) {
	return f.field(func(d PolicyDocument) string { return d.ProxyMode })
}

// PacURL implements detect.PolicySource.
func (f PolicyFile) PacURL() (string, error) {
	return f.field(func(d PolicyDocument) string { return d.ProxyPacURL })
}

// Server implements detect.PolicySource.
func (f PolicyFile) Server() (string, error) {
	return f.field(func(d PolicyDocument) string { return d.ProxyServer })
}

func (f PolicyFile) field(get func(PolicyDocument) string) (string, error) {
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	if v := get(doc); v != "" {
		return v, nil
	}
	return "", ErrValueNotFound
}

// Accessors returns the policy accessors for the detectors.
func (f PolicyFile) Accessors() detect.PolicyAccessors {
	return detect.AccessorsFrom(f)
}

var (
	_ detect.KeyReader    = OverrideFile{}
	_ detect.PolicySource = PolicyFile{}
)
