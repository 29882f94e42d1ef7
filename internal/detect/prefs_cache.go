package detect

import (
	"sync"
	"time"
)

// prefsKey identifies a cached preferences file.
type prefsKey struct {
	profile string
	path    string
}

type prefsEntry struct {
	key     prefsKey
	modTime time.Time
	config  ProxyConfig
	err     error
}

// prefsCache remembers the result of parsing the active profile's
// preferences file. An entry is valid while the key and the file's
// modification time are unchanged.
type prefsCache struct {
	mu    sync.Mutex
	entry *prefsEntry
}

// GetOrRefresh returns the cached result for key when modTime matches, and
// otherwise calls parse and stores its result. The returned bool reports a
// cache hit.
func (c *prefsCache) GetOrRefresh(key prefsKey, modTime time.Time, parse func() (ProxyConfig, error)) (ProxyConfig, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entry; e != nil && e.key == key && e.modTime.Equal(modTime) {
		return e.config, true, e.err
	}

	cfg, err := parse()
	c.entry = &prefsEntry{key: key, modTime: modTime, config: cfg, err: err}
	return cfg, false, err
}
