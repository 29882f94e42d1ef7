//go:build !windows

package sysproxy

import "github.com/rennerdo30/proxydetect/internal/detect"

type noopManager struct{}

func newPlatformManager() Manager {
	return &noopManager{}
}

func (m *noopManager) SetOverride(detect.ProxyConfig) error {
	return ErrNotSupported
}

func (m *noopManager) ClearOverride() error {
	return ErrNotSupported
}
