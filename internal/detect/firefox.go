package detect

import (
	"github.com/spf13/afero"

	"github.com/rennerdo30/proxydetect/internal/logging"
)

// ProfileLocator resolves the current user's active browser profile.
type ProfileLocator interface {
	// Locate returns the profile name and the absolute path of its
	// preferences file.
	Locate() (name, path string, err error)
}

// ProfileLocatorFunc adapts a function to ProfileLocator.
type ProfileLocatorFunc func() (name, path string, err error)

// Locate implements ProfileLocator.
func (f ProfileLocatorFunc) Locate() (string, string, error) { return f() }

// FirefoxDetector reads proxy settings from the active Firefox profile's
// prefs.js. The parsed result is cached until the file changes.
//
// It works only when the calling code runs as, or impersonates, the user who
// owns the profile.
type FirefoxDetector struct {
	fs      afero.Fs
	locator ProfileLocator
	cache   prefsCache
}

// NewFirefoxDetector creates a detector reading profiles through fs.
func NewFirefoxDetector(fs afero.Fs, locator ProfileLocator) *FirefoxDetector {
	if fs == nil || locator == nil {
		panic("detect: nil afero.Fs or ProfileLocator")
	}
	return &FirefoxDetector{fs: fs, locator: locator}
}

// Source implements Detector.
func (d *FirefoxDetector) Source() string { return SourceFirefox }

// Detect implements Detector.
func (d *FirefoxDetector) Detect() (ProxyConfig, error) {
	name, path, err := d.locator.Locate()
	if err != nil {
		return ProxyConfig{}, notFound(err, "locate firefox profile")
	}

	info, err := d.fs.Stat(path)
	if err != nil {
		return ProxyConfig{}, notFound(err, "stat %s", path)
	}

	cfg, hit, err := d.cache.GetOrRefresh(prefsKey{profile: name, path: path}, info.ModTime(), func() (ProxyConfig, error) {
		return parsePrefsFile(d.fs, path)
	})
	logging.WithComponent("detect").Debug("firefox prefs",
		"profile", name,
		"path", path,
		"cached", hit,
	)
	return cfg, err
}
