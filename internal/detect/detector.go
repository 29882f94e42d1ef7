// Package detect discovers which proxy a client should use by walking an
// ordered chain of independent configuration sources.
package detect

// Source tags reported by the detectors. The vocabulary is fixed.
const (
	SourceUpdateDev        = "UpdateDev"
	SourceRegistryOverride = "RegistryOverride"
	SourceGroupPolicy      = "GroupPolicy"
	SourceDeviceManagement = "DeviceManagement"
	SourceDefault          = "winhttp"
	SourceFirefox          = "Firefox"
	SourceIE               = "IE"
	SourceIEWPAD           = "IEWPAD"
	SourceIEPAC            = "IEPAC"
	SourceIENamed          = "IENamed"
)

// Detector produces a ProxyConfig from exactly one configuration source.
type Detector interface {
	// Detect returns the configuration held by the source, or an error
	// matching ErrNotFound when the source has nothing to say.
	Detect() (ProxyConfig, error)
	// Source returns the static diagnostic tag of the detector.
	Source() string
}

// userContextDetector is implemented by detectors that need an interactive
// user. The Chain uses it to skip the whole family once the precondition has
// failed.
type userContextDetector interface {
	Detector
	requiresUserContext()
}

// DefaultOrder is the product precedence, most authoritative first.
var DefaultOrder = []string{
	SourceUpdateDev,
	SourceGroupPolicy,
	SourceDeviceManagement,
	SourceRegistryOverride,
	SourceDefault,
	SourceFirefox,
	SourceIEWPAD,
	SourceIEPAC,
	SourceIENamed,
}

// IsKnownSource reports whether name is one of the public source tags.
func IsKnownSource(name string) bool {
	for _, s := range DefaultOrder {
		if s == name {
			return true
		}
	}
	return false
}
