package detect

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// FirefoxProfiles locates the default profile listed in profiles.ini.
type FirefoxProfiles struct {
	Fs   afero.Fs
	Root string // directory holding profiles.ini
}

// DefaultFirefoxRoot returns the per-user Firefox data directory.
func DefaultFirefoxRoot() string {
	switch runtime.GOOS {
	case "windows":
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, "Mozilla", "Firefox")
		}
	case "darwin":
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, "Firefox")
		}
	default:
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".mozilla", "firefox")
		}
	}
	return ""
}

// iniSection is one [section] of profiles.ini.
type iniSection struct {
	name   string
	values map[string]string
}

// Locate implements ProfileLocator.
func (p FirefoxProfiles) Locate() (string, string, error) {
	if p.Root == "" {
		return "", "", notFound(nil, "no firefox root")
	}
	f, err := p.Fs.Open(filepath.Join(p.Root, "profiles.ini"))
	if err != nil {
		return "", "", notFound(err, "open profiles.ini")
	}
	defer f.Close()

	sections, err := parseINI(f)
	if err != nil {
		return "", "", notFound(err, "read profiles.ini")
	}

	profile, ok := selectProfile(sections)
	if !ok {
		return "", "", notFound(nil, "no firefox profile")
	}

	dir := filepath.FromSlash(profile.values["path"])
	if profile.values["isrelative"] == "1" {
		dir = filepath.Join(p.Root, dir)
	}
	name := profile.values["name"]
	if name == "" {
		name = profile.values["path"]
	}
	return name, filepath.Join(dir, "prefs.js"), nil
}

// selectProfile picks the profile an install marks as default, then one
// flagged Default=1, then the first listed.
func selectProfile(sections []iniSection) (iniSection, bool) {
	var profiles []iniSection
	for _, s := range sections {
		if strings.HasPrefix(strings.ToLower(s.name), "profile") && s.values["path"] != "" {
			profiles = append(profiles, s)
		}
	}

	for _, s := range sections {
		if !strings.HasPrefix(strings.ToLower(s.name), "install") {
			continue
		}
		installDefault := s.values["default"]
		if installDefault == "" {
			continue
		}
		for _, p := range profiles {
			if p.values["path"] == installDefault {
				return p, true
			}
		}
		return iniSection{values: map[string]string{"path": installDefault, "isrelative": "1"}}, true
	}

	for _, p := range profiles {
		if p.values["default"] == "1" {
			return p, true
		}
	}
	if len(profiles) > 0 {
		return profiles[0], true
	}
	return iniSection{}, false
}

// parseINI reads a simple INI file. Keys are lower-cased.
func parseINI(r io.Reader) ([]iniSection, error) {
	var sections []iniSection
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, ";"), strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			sections = append(sections, iniSection{
				name:   strings.TrimSpace(line[1 : len(line)-1]),
				values: make(map[string]string),
			})
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok || len(sections) == 0 {
				continue
			}
			sections[len(sections)-1].values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}
	return sections, sc.Err()
}
