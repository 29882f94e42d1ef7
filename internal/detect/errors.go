package detect

import (
	"errors"
	"fmt"
)

// Detection errors.
var (
	// ErrNotFound reports that a source holds no applicable proxy configuration.
	// It is the expected outcome for most sources and never a failure.
	ErrNotFound = errors.New("proxy configuration not found")

	// ErrNoUserContext is returned by the browser-integration detectors when the
	// caller neither runs as nor impersonates an interactive user.
	ErrNoUserContext = errors.New("no interactive user context")

	// ErrNoProxyConfig is returned by a Chain when every detector reported
	// absence. Running without a proxy is valid and common.
	ErrNoProxyConfig = errors.New("no proxy configuration detected")
)

// IsNotFound checks if an error means absence of configuration.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// notFound wraps err so that it matches ErrNotFound while keeping the cause
// visible in debug logs.
func notFound(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w (%v)", msg, ErrNotFound, cause)
}
