package detect

import (
	"context"
	"errors"
	"time"

	"github.com/rennerdo30/proxydetect/internal/logging"
)

// Outcome classifies a single detector attempt.
type Outcome string

// Detection outcomes.
const (
	OutcomeFound         Outcome = "found"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeNoUserContext Outcome = "no_user_context"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeError         Outcome = "error"
)

// Observer is notified of every detector attempt.
type Observer interface {
	ObserveDetection(source string, outcome Outcome, elapsed time.Duration)
}

// Result is the configuration a Chain settled on.
type Result struct {
	Config ProxyConfig `yaml:"config" json:"config"`
	Source string      `yaml:"source" json:"source"`
}

// Chain tries detectors in a fixed precedence order until one succeeds.
type Chain struct {
	detectors      []Detector
	observer       Observer
	skipUserFamily bool
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithObserver reports every attempt to o.
func WithObserver(o Observer) ChainOption {
	return func(c *Chain) { c.observer = o }
}

// WithUserFamilySkip controls whether the remaining browser-integration
// detectors are skipped after one reported ErrNoUserContext. Enabled by
// default.
func WithUserFamilySkip(skip bool) ChainOption {
	return func(c *Chain) { c.skipUserFamily = skip }
}

// NewChain creates a chain over detectors, most authoritative first.
func NewChain(detectors []Detector, opts ...ChainOption) *Chain {
	c := &Chain{
		detectors:      append([]Detector(nil), detectors...),
		skipUserFamily: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns the detector tags in precedence order.
func (c *Chain) Sources() []string {
	out := make([]string, len(c.detectors))
	for i, d := range c.detectors {
		out[i] = d.Source()
	}
	return out
}

// Detect walks the chain. The first detector to succeed wins; when none
// does, ErrNoProxyConfig is returned. ctx is only checked between detectors.
func (c *Chain) Detect(ctx context.Context) (Result, error) {
	logger := logging.FromContext(ctx).With("component", "chain")
	noUser := false

	for _, d := range c.detectors {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		source := d.Source()
		if _, ok := d.(userContextDetector); ok && noUser && c.skipUserFamily {
			c.observe(source, OutcomeSkipped, 0)
			continue
		}

		start := time.Now()
		cfg, err := d.Detect()
		elapsed := time.Since(start)

		switch {
		case err == nil:
			c.observe(source, OutcomeFound, elapsed)
			logger.Info("proxy configuration detected", "source", source, "config", cfg.String())
			return Result{Config: cfg, Source: source}, nil
		case errors.Is(err, ErrNoUserContext):
			noUser = true
			c.observe(source, OutcomeNoUserContext, elapsed)
			logger.Debug("detector needs a user context", "source", source)
		case IsNotFound(err):
			c.observe(source, OutcomeNotFound, elapsed)
			logger.Debug("no proxy configuration", "source", source, "reason", err)
		default:
			c.observe(source, OutcomeError, elapsed)
			logger.Warn("detector failed", "source", source, "error", err)
		}
	}

	return Result{}, ErrNoProxyConfig
}

func (c *Chain) observe(source string, outcome Outcome, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveDetection(source, outcome, elapsed)
	}
}
