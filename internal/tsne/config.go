// Package tsne implements exact t-distributed stochastic neighbor embedding
// for projecting small embedding sets into two dimensions.
package tsne

import (
	"errors"
	"fmt"
)

// Initialization strategies for the low-dimensional layout.
const (
	InitPCA    = "pca"
	InitRandom = "random"
)

// Optimizer schedule.
const (
	Components             = 2
	exaggerationIterations = 250
	initialMomentum        = 0.5
	finalMomentum          = 0.8
	minGain                = 0.01
	minGradNorm            = 1e-7
	perplexityTolerance    = 1e-5
	perplexitySteps        = 100
	initScale              = 1e-4
	progressInterval       = 50
)

// ErrConfiguration indicates projection parameters that cannot work for the input.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError names the offending parameter and why it was rejected.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid t-SNE %s: %s", e.Param, e.Reason)
}

// Is reports ErrConfiguration so callers can match on the sentinel.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// IsConfigurationError returns true if err is or wraps a configuration failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Config holds the projection parameters.
type Config struct {
	Seed              uint64
	Perplexity        float64
	Iterations        int
	LearningRate      float64 // <= 0 selects max(n/exaggeration/4, 50)
	EarlyExaggeration float64
	Init              string

	// Progress, if set, is called every 50 iterations and once at the end.
	Progress func(iteration int, divergence float64)
}

// DefaultConfig returns the parameters used for the language-space plot.
func DefaultConfig() Config {
	return Config{
		Seed:              42,
		Perplexity:        5,
		Iterations:        1000,
		EarlyExaggeration: 12,
		Init:              InitPCA,
	}
}

// Validate checks the parameters against an input of n entities with d dimensions.
// The perplexity acts as the effective neighborhood size, so it must be below n.
func (c Config) Validate(n, d int) error {
	if n < 2 {
		return &ConfigurationError{Param: "input", Reason: fmt.Sprintf("need at least 2 entities, got %d", n)}
	}
	if d < 1 {
		return &ConfigurationError{Param: "input", Reason: "embeddings have no dimensions"}
	}
	if c.Perplexity <= 0 {
		return &ConfigurationError{Param: "perplexity", Reason: fmt.Sprintf("must be positive, got %g", c.Perplexity)}
	}
	if c.Perplexity >= float64(n) {
		return &ConfigurationError{
			Param:  "perplexity",
			Reason: fmt.Sprintf("must be less than the number of entities (%d), got %g", n, c.Perplexity),
		}
	}
	if c.Iterations < 1 {
		return &ConfigurationError{Param: "iterations", Reason: fmt.Sprintf("must be at least 1, got %d", c.Iterations)}
	}
	if c.EarlyExaggeration < 1 {
		return &ConfigurationError{Param: "early_exaggeration", Reason: fmt.Sprintf("must be at least 1, got %g", c.EarlyExaggeration)}
	}
	switch c.Init {
	case InitPCA:
		if d < Components {
			return &ConfigurationError{Param: "init", Reason: fmt.Sprintf("pca needs at least %d dimensions, got %d", Components, d)}
		}
	case InitRandom:
	default:
		return &ConfigurationError{Param: "init", Reason: fmt.Sprintf("unknown strategy %q (valid: pca, random)", c.Init)}
	}
	return nil
}

func (c Config) learningRate(n int) float64 {
	if c.LearningRate > 0 {
		return c.LearningRate
	}
	return max(float64(n)/c.EarlyExaggeration/4, 50)
}
