//go:build windows

package detect

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modwinhttp  = windows.NewLazySystemDLL("winhttp.dll")
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procWinHttpGetDefaultProxyConfiguration   = modwinhttp.NewProc("WinHttpGetDefaultProxyConfiguration")
	procWinHttpGetIEProxyConfigForCurrentUser = modwinhttp.NewProc("WinHttpGetIEProxyConfigForCurrentUser")
	procGlobalFree                            = modkernel32.NewProc("GlobalFree")
)

const (
	WINHTTP_ACCESS_TYPE_DEFAULT_PROXY = 0
	WINHTTP_ACCESS_TYPE_NO_PROXY      = 1
	WINHTTP_ACCESS_TYPE_NAMED_PROXY   = 3
)

type winhttpProxyInfo struct {
	accessType  uint32
	proxy       *uint16
	proxyBypass *uint16
}

type winhttpIEProxyConfig struct {
	autoDetect    int32
	autoConfigURL *uint16
	proxy         *uint16
	proxyBypass   *uint16
}

// takeString copies and frees a string allocated by WinHTTP.
func takeString(p *uint16) string {
	if p == nil {
		return ""
	}
	s := windows.UTF16PtrToString(p)
	procGlobalFree.Call(uintptr(unsafe.Pointer(p)))
	return strings.TrimSpace(s)
}

func systemDefaultProxy() (ProxyConfig, error) {
	if err := procWinHttpGetDefaultProxyConfiguration.Find(); err != nil {
		return ProxyConfig{}, err
	}

	var info winhttpProxyInfo
	r, _, callErr := procWinHttpGetDefaultProxyConfiguration.Call(uintptr(unsafe.Pointer(&info)))
	proxy := takeString(info.proxy)
	bypass := takeString(info.proxyBypass)
	if r == 0 {
		return ProxyConfig{}, fmt.Errorf("WinHttpGetDefaultProxyConfiguration: %w", callErr)
	}

	if info.accessType != WINHTTP_ACCESS_TYPE_NAMED_PROXY || proxy == "" {
		return ProxyConfig{}, notFound(nil, "winhttp access type %d", info.accessType)
	}
	httpProxy, httpsProxy, err := ParseProxyServer(proxy)
	if err != nil {
		return ProxyConfig{}, err
	}
	return ProxyConfig{HTTPProxy: httpProxy, HTTPSProxy: httpsProxy, Bypass: bypass}, nil
}

type winhttpInternetSettings struct{}

// SystemInternetSettings returns the current user's browser-integration
// proxy settings, as WinHTTP reports them.
func SystemInternetSettings() InternetSettingsStore {
	return winhttpInternetSettings{}
}

func (winhttpInternetSettings) Query() (InternetSettings, error) {
	if err := procWinHttpGetIEProxyConfigForCurrentUser.Find(); err != nil {
		return InternetSettings{}, err
	}

	var cfg winhttpIEProxyConfig
	r, _, callErr := procWinHttpGetIEProxyConfigForCurrentUser.Call(uintptr(unsafe.Pointer(&cfg)))
	settings := InternetSettings{
		AutoDetect:    cfg.autoDetect != 0,
		AutoConfigURL: takeString(cfg.autoConfigURL),
		Proxy:         takeString(cfg.proxy),
		Bypass:        takeString(cfg.proxyBypass),
	}
	if r == 0 {
		return InternetSettings{}, fmt.Errorf("WinHttpGetIEProxyConfigForCurrentUser: %w", callErr)
	}
	return settings, nil
}

// HasUserContext reports whether the calling thread runs as, or impersonates,
// a user other than LocalSystem.
func HasUserContext() bool {
	token := windows.GetCurrentThreadEffectiveToken()
	user, err := token.GetTokenUser()
	if err != nil {
		return false
	}
	return !user.User.Sid.IsWellKnown(windows.WinLocalSystemSid)
}
