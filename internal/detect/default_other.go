//go:build !windows

package detect

func systemDefaultProxy() (ProxyConfig, error) {
	return EnvironmentProxy()
}
