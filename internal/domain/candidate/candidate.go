package candidate

import "strings"

// Candidate is a stored profile as seen by the matching pipeline.
// Records without an embedding never reach the pipeline: the store only
// searches over embedded rows.
type Candidate struct {
	id          string
	name        string
	profile     string
	linkedinURL string
	cvURL       string
}

// Reconstruct restores a candidate from storage (no validation).
func Reconstruct(id, name, profile, linkedinURL, cvURL string) Candidate {
	return Candidate{
		id:          id,
		name:        name,
		profile:     profile,
		linkedinURL: linkedinURL,
		cvURL:       cvURL,
	}
}

// ID returns the opaque candidate identifier.
func (c *Candidate) ID() string { return c.id }

// Name returns the display name, possibly empty.
func (c *Candidate) Name() string { return c.name }

// Profile returns the free-text CV summary, possibly empty.
func (c *Candidate) Profile() string { return c.profile }

// HasProfile reports whether the profile carries any non-whitespace text.
func (c *Candidate) HasProfile() bool { return strings.TrimSpace(c.profile) != "" }

// LinkedinURL returns the professional-network URL, possibly empty.
func (c *Candidate) LinkedinURL() string { return c.linkedinURL }

// CVURL returns the CV document URL, possibly empty.
func (c *Candidate) CVURL() string { return c.cvURL }

// Scored is a candidate paired with its cosine similarity to the query.
type Scored struct {
	Candidate  Candidate
	Similarity float64
}
