//go:build !windows && !linux && !darwin

package detect

// SystemInternetSettings returns a store that never holds settings on this
// platform.
func SystemInternetSettings() InternetSettingsStore {
	return InternetSettingsFunc(func() (InternetSettings, error) {
		return InternetSettings{}, notFound(nil, "no browser proxy store on this platform")
	})
}
