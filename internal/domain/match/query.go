package match

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain"
)

// Query is a validated free-text role description.
type Query struct {
	text string
}

// NewQuery validates a raw query. Blank input is rejected with domain.ErrInvalidQuery.
// Length is not limited: a pasted job posting is a normal query.
func NewQuery(raw string) (Query, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Query{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	return Query{text: text}, nil
}

// Text returns the normalized query text.
func (q Query) Text() string { return q.text }
