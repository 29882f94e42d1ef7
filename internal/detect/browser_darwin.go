//go:build darwin

package detect

// SystemInternetSettings returns the network proxy settings of the current
// user, read through scutil.
func SystemInternetSettings() InternetSettingsStore {
	return scutilProxySettings{run: execCommand}
}
