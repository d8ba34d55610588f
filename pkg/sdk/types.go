package talentdex

// Match is one ranked candidate.
type Match struct {
	ID          string
	Name        string
	Accuracy    int // similarity as a percentage in [0, 100]
	Reason      string
	LinkedinURL string
	CVURL       string
}

// Usage reports provider consumption for one search.
type Usage struct {
	EmbeddingTokens    int
	SynthesisCalls     int
	SynthesisFallbacks int
}

// SearchResult is the outcome of Client.Search. Matches is never nil.
// Degraded is set when the permissive fallback pass failed, so an empty
// Matches may hide candidates that exist.
type SearchResult struct {
	Matches  []Match
	Usage    Usage
	Degraded bool
}
