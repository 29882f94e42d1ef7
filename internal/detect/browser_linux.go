//go:build linux

package detect

// SystemInternetSettings returns the desktop proxy settings of the current
// user, read from the GNOME settings store.
func SystemInternetSettings() InternetSettingsStore {
	return gnomeProxySettings{run: execCommand}
}
