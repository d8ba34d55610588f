package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// pqUndefinedFunction is SQLSTATE 42883.
const pqUndefinedFunction = "42883"

// SearchKNN calls the similarity function named by q.IndexName:
//
//	fn(query_embedding vector, match_threshold float, match_count int)
//	  RETURNS TABLE (id, name, profile, linkedin_url, cv_url, similarity)
//
// The function is expected to skip rows without an embedding and order by
// similarity descending.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	query, err := buildSearchQuery(q.IndexName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(q.Vector), q.Threshold, q.K)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: classify(err)}
	}
	defer func() { _ = rows.Close() }()

	res, err := scanEntries(rows, q.Threshold)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: classify(err)}
	}
	return res, nil
}

// SearchRoutineExists checks pg_proc for a function with the given name.
func (s *Store) SearchRoutineExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, &db.Error{Op: db.OpQuery, Err: classify(err)}
	}
	return exists, nil
}

func buildSearchQuery(fn string) (string, error) {
	if !db.IsValidIdentifier(fn) {
		return "", fmt.Errorf("invalid search function name %q", fn)
	}
	return fmt.Sprintf(
		`SELECT id::text, COALESCE(name, ''), COALESCE(profile, ''), `+
			`COALESCE(linkedin_url, ''), COALESCE(cv_url, ''), similarity `+
			`FROM %s($1::vector, $2, $3)`,
		pq.QuoteIdentifier(fn),
	), nil
}

// rowScanner is the subset of *sql.Rows used by scanEntries.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows rowScanner, threshold float64) (*db.SearchResult, error) {
	var entries []db.SearchEntry
	for rows.Next() {
		var (
			id, name, profile, linkedin, cv string
			similarity                      float64
		)
		if err := rows.Scan(&id, &name, &profile, &linkedin, &cv, &similarity); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if similarity <= threshold {
			continue
		}
		entries = append(entries, db.SearchEntry{
			Key:   id,
			Score: min(1, similarity),
			Fields: map[string]string{
				db.FieldName:        name,
				db.FieldProfile:     profile,
				db.FieldLinkedinURL: linkedin,
				db.FieldCVURL:       cv,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// classify tags an undefined-function error with db.ErrFunctionNotFound.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUndefinedFunction {
		return fmt.Errorf("%s: %w", pqErr.Message, db.ErrFunctionNotFound)
	}
	return err
}
