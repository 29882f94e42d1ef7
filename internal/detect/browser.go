package detect

// InternetSettings is a snapshot of the current user's browser-integration
// proxy store.
type InternetSettings struct {
	AutoDetect    bool
	AutoConfigURL string
	Proxy         string
	Bypass        string
}

// InternetSettingsStore queries the browser-integration proxy store.
type InternetSettingsStore interface {
	Query() (InternetSettings, error)
}

// InternetSettingsFunc adapts a function to InternetSettingsStore.
type InternetSettingsFunc func() (InternetSettings, error)

// Query implements InternetSettingsStore.
func (f InternetSettingsFunc) Query() (InternetSettings, error) { return f() }

// UserContextFunc reports whether the caller runs as or impersonates an
// interactively logged-on user.
type UserContextFunc func() bool

// ieDetector is the shared base of the browser-integration detectors. It is
// not meant to be placed in a chain on its own.
type ieDetector struct {
	store   InternetSettingsStore
	hasUser UserContextFunc
}

func newIEDetector(store InternetSettingsStore, hasUser UserContextFunc) ieDetector {
	if store == nil || hasUser == nil {
		panic("detect: nil InternetSettingsStore or UserContextFunc")
	}
	return ieDetector{store: store, hasUser: hasUser}
}

func (d *ieDetector) requiresUserContext() {}

// Source implements Detector.
func (d *ieDetector) Source() string { return SourceIE }

// Detect returns every setting the store holds.
func (d *ieDetector) Detect() (ProxyConfig, error) {
	s, err := d.query()
	if err != nil {
		return ProxyConfig{}, err
	}
	cfg := ProxyConfig{AutoDetect: s.AutoDetect, AutoConfigURL: s.AutoConfigURL}
	if named, err := namedProxy(s); err == nil {
		cfg.HTTPProxy, cfg.HTTPSProxy, cfg.Bypass = named.HTTPProxy, named.HTTPSProxy, named.Bypass
	}
	if cfg.Mode() == ModeDirect {
		return ProxyConfig{}, notFound(nil, "no browser proxy settings")
	}
	return cfg, nil
}

func (d *ieDetector) query() (InternetSettings, error) {
	if !d.hasUser() {
		return InternetSettings{}, ErrNoUserContext
	}
	s, err := d.store.Query()
	if err != nil {
		if IsNotFound(err) {
			return InternetSettings{}, err
		}
		return InternetSettings{}, notFound(err, "query browser proxy store")
	}
	return s, nil
}

func namedProxy(s InternetSettings) (ProxyConfig, error) {
	if s.Proxy == "" {
		return ProxyConfig{}, notFound(nil, "no named proxy")
	}
	httpProxy, httpsProxy, err := ParseProxyServer(s.Proxy)
	if err != nil {
		return ProxyConfig{}, err
	}
	return ProxyConfig{HTTPProxy: httpProxy, HTTPSProxy: httpsProxy, Bypass: s.Bypass}, nil
}

// IEWPADDetector reports automatic proxy discovery when the user enabled it.
type IEWPADDetector struct{ ieDetector }

// NewIEWPADDetector creates the auto-detect browser-integration detector.
func NewIEWPADDetector(store InternetSettingsStore, hasUser UserContextFunc) *IEWPADDetector {
	return &IEWPADDetector{newIEDetector(store, hasUser)}
}

// Source implements Detector.
func (d *IEWPADDetector) Source() string { return SourceIEWPAD }

// Detect implements Detector.
func (d *IEWPADDetector) Detect() (ProxyConfig, error) {
	s, err := d.query()
	if err != nil {
		return ProxyConfig{}, err
	}
	if !s.AutoDetect {
		return ProxyConfig{}, notFound(nil, "auto-detect disabled")
	}
	return ProxyConfig{AutoDetect: true}, nil
}

// IEPACDetector reports the user's proxy auto-config URL.
type IEPACDetector struct{ ieDetector }

// NewIEPACDetector creates the PAC browser-integration detector.
func NewIEPACDetector(store InternetSettingsStore, hasUser UserContextFunc) *IEPACDetector {
	return &IEPACDetector{newIEDetector(store, hasUser)}
}

// Source implements Detector.
func (d *IEPACDetector) Source() string { return SourceIEPAC }

// Detect implements Detector.
func (d *IEPACDetector) Detect() (ProxyConfig, error) {
	s, err := d.query()
	if err != nil {
		return ProxyConfig{}, err
	}
	if s.AutoConfigURL == "" {
		return ProxyConfig{}, notFound(nil, "no auto-config url")
	}
	return ProxyConfig{AutoConfigURL: s.AutoConfigURL}, nil
}

// IENamedDetector reports the user's statically named proxy.
type IENamedDetector struct{ ieDetector }

// NewIENamedDetector creates the named-proxy browser-integration detector.
func NewIENamedDetector(store InternetSettingsStore, hasUser UserContextFunc) *IENamedDetector {
	return &IENamedDetector{newIEDetector(store, hasUser)}
}

// Source implements Detector.
func (d *IENamedDetector) Source() string { return SourceIENamed }

// Detect implements Detector.
func (d *IENamedDetector) Detect() (ProxyConfig, error) {
	s, err := d.query()
	if err != nil {
		return ProxyConfig{}, err
	}
	return namedProxy(s)
}
