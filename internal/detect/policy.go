package detect

import (
	"strings"
)

// Policy proxy modes.
const (
	PolicyModeDirect       = "direct"
	PolicyModeAutoDetect   = "auto_detect"
	PolicyModePACScript    = "pac_script"
	PolicyModeFixedServers = "fixed_servers"
	PolicyModeSystem       = "system"
)

// PolicyAccessors is the read-only view of an administrator policy store.
// Each accessor may fail independently.
type PolicyAccessors struct {
	IsManaged func() bool
	Mode      func() (string, error)
	PacURL    func() (string, error)
	Server    func() (string, error)
}

// PolicySource is satisfied by policy stores that expose the accessors as
// methods.
type PolicySource interface {
	IsManaged() bool
	Mode() (string, error)
	PacURL() (string, error)
	Server() (string, error)
}

// AccessorsFrom adapts a PolicySource.
func AccessorsFrom(src PolicySource) PolicyAccessors {
	return PolicyAccessors{
		IsManaged: src.IsManaged,
		Mode:      src.Mode,
		PacURL:    src.PacURL,
		Server:    src.Server,
	}
}

// Unmanaged returns accessors for a machine without policy control.
func Unmanaged() PolicyAccessors {
	none := func() (string, error) { return "", ErrNotFound }
	return PolicyAccessors{
		IsManaged: func() bool { return false },
		Mode:      none,
		PacURL:    none,
		Server:    none,
	}
}

// DetectPolicy evaluates a policy store. Group policy and device management
// both go through it.
func DetectPolicy(acc PolicyAccessors) (ProxyConfig, error) {
	if acc.IsManaged == nil || !acc.IsManaged() {
		return ProxyConfig{}, notFound(nil, "not managed")
	}

	mode, err := read(acc.Mode)
	if err != nil {
		return ProxyConfig{}, notFound(err, "read proxy mode")
	}

	switch strings.ToLower(mode) {
	case PolicyModeDirect:
		return ProxyConfig{}, nil
	case PolicyModeAutoDetect:
		return ProxyConfig{AutoDetect: true}, nil
	case PolicyModePACScript:
		pac, err := read(acc.PacURL)
		if err != nil || pac == "" {
			return ProxyConfig{}, notFound(err, "pac_script mode without pac url")
		}
		return ProxyConfig{AutoConfigURL: pac}, nil
	case PolicyModeFixedServers:
		server, err := read(acc.Server)
		if err != nil || server == "" {
			return ProxyConfig{}, notFound(err, "fixed_servers mode without server")
		}
		httpProxy, httpsProxy, err := ParseProxyServer(server)
		if err != nil {
			return ProxyConfig{}, err
		}
		return ProxyConfig{HTTPProxy: httpProxy, HTTPSProxy: httpsProxy}, nil
	case PolicyModeSystem:
		return ProxyConfig{}, notFound(nil, "policy defers to system settings")
	default:
		return ProxyConfig{}, notFound(nil, "unknown proxy mode %q", mode)
	}
}

func read(fn func() (string, error)) (string, error) {
	if fn == nil {
		return "", ErrNotFound
	}
	v, err := fn()
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// PolicyDetector reads proxy settings from an administrator policy store.
type PolicyDetector struct {
	source string
	acc    PolicyAccessors
}

// NewGroupPolicyDetector creates a detector over group policy accessors.
func NewGroupPolicyDetector(acc PolicyAccessors) *PolicyDetector {
	return &PolicyDetector{source: SourceGroupPolicy, acc: acc}
}

// NewDeviceManagementDetector creates a detector over device management
// accessors.
func NewDeviceManagementDetector(acc PolicyAccessors) *PolicyDetector {
	return &PolicyDetector{source: SourceDeviceManagement, acc: acc}
}

// Source implements Detector.
func (d *PolicyDetector) Source() string { return d.source }

// Detect implements Detector.
func (d *PolicyDetector) Detect() (ProxyConfig, error) {
	return DetectPolicy(d.acc)
}
