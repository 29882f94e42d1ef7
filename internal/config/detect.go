package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rennerdo30/proxydetect/internal/detect"
	"github.com/rennerdo30/proxydetect/internal/logging"
)

// Config is the configuration of the proxydetect command.
type Config struct {
	// Sources lists the detectors to run, most authoritative first. Empty
	// selects the default precedence.
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`

	// SkipUserSourcesWithoutContext skips the remaining browser-integration
	// detectors once one of them found no interactive user.
	SkipUserSourcesWithoutContext bool `yaml:"skip_user_sources_without_context" json:"skip_user_sources_without_context"`

	// FirefoxRoot is the directory holding Firefox's profiles.ini.
	FirefoxRoot string `yaml:"firefox_root,omitempty" json:"firefox_root,omitempty"`

	// OverrideFile is a YAML stand-in for the registry override keys on
	// platforms without a registry.
	OverrideFile string `yaml:"override_file,omitempty" json:"override_file,omitempty"`

	// GroupPolicyFile replaces the platform group policy store.
	GroupPolicyFile string `yaml:"group_policy_file,omitempty" json:"group_policy_file,omitempty"`

	// DeviceManagementFile is the cached device management policy.
	DeviceManagementFile string `yaml:"device_management_file,omitempty" json:"device_management_file,omitempty"`

	Metrics MetricsConfig  `yaml:"metrics" json:"metrics"`
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	TextfilePath string `yaml:"textfile_path,omitempty" json:"textfile_path,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sources:                       append([]string(nil), detect.DefaultOrder...),
		SkipUserSourcesWithoutContext: true,
		FirefoxRoot:                   detect.DefaultFirefoxRoot(),
		DeviceManagementFile:          DefaultDeviceManagementFile(),
		Logging:                       logging.DefaultConfig(),
	}
}

// DefaultDeviceManagementFile returns where the device management agent
// caches its policy.
func DefaultDeviceManagementFile() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("ProgramData")
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, "Bifrost", "Policies", "device-management.yaml")
	}
	return "/etc/bifrost/device-management.yaml"
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if !detect.IsKnownSource(s) {
			return fmt.Errorf("unknown source %q (known: %v)", s, detect.DefaultOrder)
		}
		if seen[s] {
			return fmt.Errorf("source %q listed twice", s)
		}
		seen[s] = true
	}

	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		return fmt.Errorf("metrics textfile_path is required when metrics are enabled")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// ApplySources replaces the stores of src with the files this configuration
// names.
func (c *Config) ApplySources(src detect.Sources) detect.Sources {
	if c.OverrideFile != "" {
		src.Keys = OverrideFile{Path: c.OverrideFile}
	}
	if c.GroupPolicyFile != "" {
		src.GroupPolicy = PolicyFile{Path: c.GroupPolicyFile}.Accessors()
	}
	if c.DeviceManagementFile != "" {
		src.DeviceManagement = PolicyFile{Path: c.DeviceManagementFile}.Accessors()
	}
	if c.FirefoxRoot != "" && src.Fs != nil {
		src.Profiles = detect.FirefoxProfiles{Fs: src.Fs, Root: c.FirefoxRoot}
	}
	return src
}
