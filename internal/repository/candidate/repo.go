package candidate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/talentdex/internal/db"
	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// returnFields are fetched for every hit. FT drivers need __vector_score
// listed explicitly; the Postgres driver ignores the list.
var returnFields = []string{
	db.FieldName, db.FieldProfile, db.FieldLinkedinURL, db.FieldCVURL, db.FieldVectorScore,
}

// KeyNamespace follows the configured key prefix in candidate hash keys:
// <prefix>candidate:<id>. SQL rows carry bare ids and are left untouched.
const KeyNamespace = "candidate:"

// store is the consumer interface for similarity search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/match.Retriever on top of a db driver.
type Repo struct {
	store   store
	routine string
	idStart string
}

// New creates a candidate repository. routine is the FT index or SQL function
// name; keyPrefix is the configured store prefix (database.key_prefix).
// keyPrefix+KeyNamespace is stripped from hash keys to recover candidate ids.
func New(s store, routine, keyPrefix string) *Repo {
	return &Repo{store: s, routine: routine, idStart: keyPrefix + KeyNamespace}
}

// Search returns at most limit candidates with similarity strictly above
// threshold, ordered by similarity descending and then by id.
func (r *Repo) Search(
	ctx context.Context, vector []float32, threshold float64, limit int,
) ([]candidate.Scored, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.routine,
		Vector:       vector,
		K:            limit,
		Threshold:    threshold,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	return r.toScored(sr, threshold, limit), nil
}

func (r *Repo) toScored(sr *db.SearchResult, threshold float64, limit int) []candidate.Scored {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]candidate.Scored, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.Score <= threshold {
			continue
		}
		out = append(out, candidate.Scored{
			Candidate: candidate.Reconstruct(
				strings.TrimPrefix(e.Key, r.idStart),
				e.Fields[db.FieldName],
				e.Fields[db.FieldProfile],
				e.Fields[db.FieldLinkedinURL],
				e.Fields[db.FieldCVURL],
			),
			Similarity: e.Score,
		})
	}

	slices.SortStableFunc(out, func(a, b candidate.Scored) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return strings.Compare(a.Candidate.ID(), b.Candidate.ID())
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *Repo) mapError(err error) error {
	if errors.Is(err, db.ErrIndexNotFound) || errors.Is(err, db.ErrFunctionNotFound) {
		return fmt.Errorf("search %s: %w", r.routine, domain.NewSearchFunctionNotFound(r.routine))
	}
	return fmt.Errorf("search %s: %w: %w", r.routine, domain.ErrStore, err)
}
