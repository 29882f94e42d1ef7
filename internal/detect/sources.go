package detect

import (
	"fmt"

	"github.com/spf13/afero"
)

// Sources holds the backing stores the detectors are built over.
type Sources struct {
	Keys             KeyReader
	GroupPolicy      PolicyAccessors
	DeviceManagement PolicyAccessors
	DefaultProxy     DefaultProxyFunc
	InternetSettings InternetSettingsStore
	UserContext      UserContextFunc
	Fs               afero.Fs
	Profiles         ProfileLocator
}

// SystemSources returns the stores of the running platform.
func SystemSources() Sources {
	fs := afero.NewOsFs()
	return Sources{
		Keys:             SystemKeyReader(),
		GroupPolicy:      SystemGroupPolicy(),
		DeviceManagement: Unmanaged(),
		DefaultProxy:     systemDefaultProxy,
		InternetSettings: SystemInternetSettings(),
		UserContext:      HasUserContext,
		Fs:               fs,
		Profiles:         FirefoxProfiles{Fs: fs, Root: DefaultFirefoxRoot()},
	}
}

// NewDetectors builds detectors for the given source tags, in order. An
// empty list selects DefaultOrder.
func NewDetectors(src Sources, names []string) ([]Detector, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}

	detectors := make([]Detector, 0, len(names))
	for _, name := range names {
		d, err := newDetector(src, name)
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

func newDetector(src Sources, name string) (Detector, error) {
	switch name {
	case SourceUpdateDev:
		return NewUpdateDevDetector(src.Keys), nil
	case SourceRegistryOverride:
		return NewProductOverrideDetector(src.Keys), nil
	case SourceGroupPolicy:
		return NewGroupPolicyDetector(src.GroupPolicy), nil
	case SourceDeviceManagement:
		return NewDeviceManagementDetector(src.DeviceManagement), nil
	case SourceDefault:
		return NewDefaultDetectorWith(src.DefaultProxy), nil
	case SourceFirefox:
		return NewFirefoxDetector(src.Fs, src.Profiles), nil
	case SourceIEWPAD:
		return NewIEWPADDetector(src.InternetSettings, src.UserContext), nil
	case SourceIEPAC:
		return NewIEPACDetector(src.InternetSettings, src.UserContext), nil
	case SourceIENamed:
		return NewIENamedDetector(src.InternetSettings, src.UserContext), nil
	default:
		return nil, fmt.Errorf("unknown proxy source %q", name)
	}
}
