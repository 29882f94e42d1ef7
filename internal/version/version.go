// Package version provides build version information for proxydetect.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables injected via ldflags. Values left at their defaults
// are filled from the module build info, which `go install` records.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var resolved = sync.OnceValue(func() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(info, bi)
	}
	return info
})

// fromBuildInfo fills the fields of info still at their ldflags defaults.
func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	fromVCS, modified := false, false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit, fromVCS = s.Value, true
				if len(info.GitCommit) > 12 {
					info.GitCommit = info.GitCommit[:12]
				}
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if fromVCS && modified {
		info.GitCommit += "-dirty"
	}
	return info
}

// String returns a full version string including commit and build time.
func String() string {
	info := resolved()
	return fmt.Sprintf("proxydetect %s (%s) built %s", info.Version, info.GitCommit, info.BuildTime)
}

// Short returns just the version number.
func Short() string {
	return resolved().Version
}

// Full returns version info with Go version.
func Full() string {
	info := resolved()
	return fmt.Sprintf("%s - Go %s %s", String(), info.GoVersion, info.Platform)
}

// Info contains structured version information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	return resolved()
}
