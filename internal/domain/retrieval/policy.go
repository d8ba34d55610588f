package retrieval

import "fmt"

// PassName tags a retrieval pass in logs and metrics.
type PassName string

const (
	// Primary is the recall-oriented first pass.
	Primary PassName = "primary"
	// Fallback accepts every embedded candidate when Primary found nothing.
	Fallback PassName = "fallback"
)

// Defaults for the two-pass policy.
const (
	DefaultPrimaryThreshold  = 0.3
	DefaultFallbackThreshold = 0.0
	DefaultLimit             = 5
	MaxLimit                 = 100
)

// Pass is one similarity-search attempt. Only similarities strictly greater
// than Threshold qualify.
type Pass struct {
	Name      PassName
	Threshold float64
}

// Policy is an ordered list of passes sharing one limit. Passes run in order
// until one returns at least one candidate.
type Policy struct {
	passes []Pass
	limit  int
}

// NewPolicy validates thresholds and limit and builds the primary/fallback policy.
func NewPolicy(primary, fallback float64, limit int) (Policy, error) {
	if primary < 0 || primary > 1 {
		return Policy{}, fmt.Errorf("primary threshold must be in [0,1], got %g", primary)
	}
	if fallback < 0 || fallback > 1 {
		return Policy{}, fmt.Errorf("fallback threshold must be in [0,1], got %g", fallback)
	}
	if fallback > primary {
		return Policy{}, fmt.Errorf("fallback threshold %g must not exceed primary threshold %g", fallback, primary)
	}
	if limit <= 0 || limit > MaxLimit {
		return Policy{}, fmt.Errorf("limit must be in [1,%d], got %d", MaxLimit, limit)
	}
	return Policy{
		passes: []Pass{
			{Name: Primary, Threshold: primary},
			{Name: Fallback, Threshold: fallback},
		},
		limit: limit,
	}, nil
}

// DefaultPolicy returns the 0.3 / 0.0 / 5 policy.
func DefaultPolicy() Policy {
	p, _ := NewPolicy(DefaultPrimaryThreshold, DefaultFallbackThreshold, DefaultLimit)
	return p
}

// Passes returns the passes in execution order.
func (p Policy) Passes() []Pass {
	out := make([]Pass, len(p.passes))
	copy(out, p.passes)
	return out
}

// Limit returns the per-pass result cap.
func (p Policy) Limit() int { return p.limit }
