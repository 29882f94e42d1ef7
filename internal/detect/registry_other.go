//go:build !windows

package detect

type noRegistry struct{}

// SystemKeyReader returns a KeyReader for the platform. Only Windows has a
// registry; elsewhere every read reports absence and overrides come from the
// YAML override file instead.
func SystemKeyReader() KeyReader {
	return noRegistry{}
}

func (noRegistry) ReadString(path, name string) (string, error) {
	return "", notFound(nil, "no registry: %s %s", path, name)
}

func (noRegistry) ReadDWORD(path, name string) (uint32, error) {
	return 0, notFound(nil, "no registry: %s %s", path, name)
}

// SystemGroupPolicy returns accessors over the machine group policy. There is
// no group policy outside Windows.
func SystemGroupPolicy() PolicyAccessors {
	return Unmanaged()
}
