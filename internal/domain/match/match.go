package match

import (
	"math"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

const (
	// NoInformationReason is the justification for candidates without profile text.
	NoInformationReason = "No additional information available"
	// UnknownName is the display name for candidates stored without one.
	UnknownName = "Unknown"
)

// Result is a single ranked, annotated match returned to the caller.
type Result struct {
	id          string
	name        string
	accuracy    int
	reason      string
	linkedinURL string
	cvURL       string
}

// New builds a match result from a scored candidate and its justification.
// The name defaults to UnknownName; link fields are copied as-is.
func New(sc candidate.Scored, reason string) Result {
	name := sc.Candidate.Name()
	if name == "" {
		name = UnknownName
	}
	return Result{
		id:          sc.Candidate.ID(),
		name:        name,
		accuracy:    Accuracy(sc.Similarity),
		reason:      reason,
		linkedinURL: sc.Candidate.LinkedinURL(),
		cvURL:       sc.Candidate.CVURL(),
	}
}

// Accuracy converts a similarity into an integer percentage clamped to [0, 100].
func Accuracy(similarity float64) int {
	if math.IsNaN(similarity) {
		return 0
	}
	pct := math.Round(similarity * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// FallbackReason is the justification used when synthesis is skipped or fails.
func FallbackReason(c *candidate.Candidate) string {
	if !c.HasProfile() {
		return NoInformationReason
	}
	return c.Profile()
}

// ID returns the candidate identifier.
func (r *Result) ID() string { return r.id }

// Name returns the display name.
func (r *Result) Name() string { return r.name }

// Accuracy returns the similarity percentage.
func (r *Result) Accuracy() int { return r.accuracy }

// Reason returns the justification text.
func (r *Result) Reason() string { return r.reason }

// LinkedinURL returns the professional-network URL, possibly empty.
func (r *Result) LinkedinURL() string { return r.linkedinURL }

// CVURL returns the CV document URL, possibly empty.
func (r *Result) CVURL() string { return r.cvURL }
