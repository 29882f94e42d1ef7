//go:build windows

package detect

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// Group policy key and values.
const (
	groupPolicyKeyPath = `HKLM\SOFTWARE\Policies\Bifrost\Update`
	valuePolicyMode    = "ProxyMode"
	valuePolicyPacURL  = "ProxyPacUrl"
	valuePolicyServer  = "ProxyServer"
)

type registryKeyReader struct{}

// SystemKeyReader returns a KeyReader backed by the Windows registry.
func SystemKeyReader() KeyReader {
	return registryKeyReader{}
}

func (registryKeyReader) ReadString(path, name string) (string, error) {
	k, err := openKey(path)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if err != nil {
		return "", registryErr(err, path, name)
	}
	return v, nil
}

func (registryKeyReader) ReadDWORD(path, name string) (uint32, error) {
	k, err := openKey(path)
	if err != nil {
		return 0, err
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(name)
	if err != nil {
		return 0, registryErr(err, path, name)
	}
	return uint32(v), nil
}

func openKey(path string) (registry.Key, error) {
	root, sub, ok := strings.Cut(path, `\`)
	if !ok {
		return 0, fmt.Errorf("registry path %q has no subkey", path)
	}

	var base registry.Key
	switch strings.ToUpper(root) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		base = registry.LOCAL_MACHINE
	case "HKCU", "HKEY_CURRENT_USER":
		base = registry.CURRENT_USER
	default:
		return 0, fmt.Errorf("unsupported registry root %q", root)
	}

	k, err := registry.OpenKey(base, sub, registry.QUERY_VALUE)
	if err != nil {
		return 0, registryErr(err, path, "")
	}
	return k, nil
}

func registryErr(err error, path, name string) error {
	if errors.Is(err, registry.ErrNotExist) {
		return notFound(nil, "registry %s %s", path, name)
	}
	return fmt.Errorf("registry %s %s: %w", path, name, err)
}

// registryPolicy reads group policy values from the registry.
type registryPolicy struct {
	reader KeyReader
}

func (p registryPolicy) IsManaged() bool {
	mode, err := p.reader.ReadString(groupPolicyKeyPath, valuePolicyMode)
	return err == nil && strings.TrimSpace(mode) != ""
}

func (p registryPolicy) Mode() (string, error) {
	return p.reader.ReadString(groupPolicyKeyPath, valuePolicyMode)
}

func (p registryPolicy) PacURL() (string, error) {
	return p.reader.ReadString(groupPolicyKeyPath, valuePolicyPacURL)
}

func (p registryPolicy) Server() (string, error) {
	return p.reader.ReadString(groupPolicyKeyPath, valuePolicyServer)
}

// SystemGroupPolicy returns accessors over the machine group policy.
func SystemGroupPolicy() PolicyAccessors {
	return AccessorsFrom(registryPolicy{reader: SystemKeyReader()})
}
