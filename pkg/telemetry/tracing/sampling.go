package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampling strategies.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// createSampler creates a parent-based sampler for the strategy. Maintenance
// runs are root spans, so the base sampler decides for every run.
//
//	telemetry:
//	  tracing:
//	    sampler: ratio
//	    sample_ratio: 0.5
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	if err := ValidateSampling(strategy, ratio); err != nil {
		return nil, err
	}

	var base sdktrace.Sampler
	switch strategy {
	case SamplerAlways:
		base = sdktrace.AlwaysSample()
	case SamplerNever:
		base = sdktrace.NeverSample()
	case SamplerRatio:
		base = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(base), nil
}

// ValidateSampling checks a sampling strategy and its ratio.
func ValidateSampling(strategy string, ratio float64) error {
	switch strategy {
	case SamplerAlways, SamplerNever:
		return nil
	case SamplerRatio:
		if ratio < 0.0 || ratio > 1.0 {
			return fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		return nil
	default:
		return fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}
}
