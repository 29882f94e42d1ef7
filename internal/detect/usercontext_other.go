//go:build !windows

package detect

import "os"

// HasUserContext reports whether the process runs as a regular user. Root
// has no desktop session whose proxy settings would apply.
func HasUserContext() bool {
	return os.Geteuid() != 0
}
