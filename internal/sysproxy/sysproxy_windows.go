//go:build windows

package sysproxy

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/rennerdo30/proxydetect/internal/detect"
)

type windowsManager struct {
	path string // relative to HKLM
}

func newPlatformManager() Manager {
	return &windowsManager{path: strings.TrimPrefix(detect.ProductOverrideKeyPath, `HKLM\`)}
}

func (m *windowsManager) SetOverride(cfg detect.ProxyConfig) error {
	v := values(cfg)
	if len(v) == 0 {
		return fmt.Errorf("override %s selects direct connections; use ClearOverride", cfg)
	}
	if err := m.ClearOverride(); err != nil {
		return err
	}

	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, m.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create registry key: %w", err)
	}
	defer k.Close()

	for name, value := range v {
		if name == detect.ValueProxyAutoDetect {
			err = k.SetDWordValue(name, 1)
		} else {
			err = k.SetStringValue(name, value)
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func (m *windowsManager) ClearOverride() error {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, m.path, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer k.Close()

	for _, name := range []string{
		detect.ValueProxyServer,
		detect.ValueProxyPacURL,
		detect.ValueProxyAutoDetect,
		detect.ValueProxyBypass,
	} {
		if err := k.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}
