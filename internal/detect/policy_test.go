package detect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managed(mode, pac, server string) PolicyAccessors {
	value := func(v string) func() (string, error) {
		return func() (string, error) {
			if v == "" {
				return "", errors.New("value not set")
			}
			return v, nil
		}
	}
	return PolicyAccessors{
		IsManaged: func() bool { return true },
		Mode:      value(mode),
		PacURL:    value(pac),
		Server:    value(server),
	}
}

func TestDetectPolicy_UnmanagedNeverReadsValues(t *testing.T) {
	fail := func() (string, error) {
		t.Fatal("accessor called on an unmanaged machine")
		return "", nil
	}
	acc := PolicyAccessors{
		IsManaged: func() bool { return false },
		Mode:      fail,
		PacURL:    fail,
		Server:    fail,
	}

	_, err := DetectPolicy(acc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		acc     PolicyAccessors
		want    ProxyConfig
		wantErr bool
	}{
		{"direct", managed("direct", "", ""), ProxyConfig{}, false},
		{"auto detect", managed("auto_detect", "", ""), ProxyConfig{AutoDetect: true}, false},
		{"pac script", managed("pac_script", "http://wpad/proxy.pac", ""), ProxyConfig{AutoConfigURL: "http://wpad/proxy.pac"}, false},
		{"pac script without url", managed("pac_script", "", ""), ProxyConfig{}, true},
		{"fixed servers", managed("fixed_servers", "", "http=1.2.3.4:80;https=1.2.3.4:443"),
			ProxyConfig{HTTPProxy: "1.2.3.4:80", HTTPSProxy: "1.2.3.4:443"}, false},
		{"fixed servers without server", managed("fixed_servers", "", ""), ProxyConfig{}, true},
		{"fixed servers malformed", managed("fixed_servers", "", "ftp=f:21"), ProxyConfig{}, true},
		{"mode is case insensitive", managed(" Auto_Detect ", "", ""), ProxyConfig{AutoDetect: true}, false},
		{"system", managed("system", "", "p:80"), ProxyConfig{}, true},
		{"unknown mode", managed("bogus_mode", "", "p:80"), ProxyConfig{}, true},
		{"mode unreadable", managed("", "", "p:80"), ProxyConfig{}, true},
		{"zero accessors", PolicyAccessors{}, ProxyConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectPolicy(tt.acc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type policyStore struct{ mode string }

func (p policyStore) IsManaged() bool         { return true }
func (p policyStore) Mode() (string, error)   { return p.mode, nil }
func (p policyStore) PacURL() (string, error) { return "", ErrNotFound }
func (p policyStore) Server() (string, error) { return "", ErrNotFound }

func TestPolicyDetectors(t *testing.T) {
	gp := NewGroupPolicyDetector(AccessorsFrom(policyStore{mode: "auto_detect"}))
	assert.Equal(t, SourceGroupPolicy, gp.Source())
	cfg, err := gp.Detect()
	require.NoError(t, err)
	assert.True(t, cfg.AutoDetect)

	dm := NewDeviceManagementDetector(Unmanaged())
	assert.Equal(t, SourceDeviceManagement, dm.Source())
	_, err = dm.Detect()
	assert.ErrorIs(t, err, ErrNotFound)
}
