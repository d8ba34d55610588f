package valkey

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// valkey-search has no SORTBY; KNN replies are already ordered by distance.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}

	args := []string{q.IndexName, fmt.Sprintf("*=>[KNN %d @vector $BLOB]", q.K)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", db.VectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%s: %w", q.IndexName, db.ErrIndexNotFound)}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw, q.Threshold)
}

// SearchRoutineExists checks the FT index via FT.INFO.
func (s *Store) SearchRoutineExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	if err == nil {
		return true, nil
	}
	if isMissingIndex(err) {
		return false, nil
	}
	return false, &db.Error{Op: db.OpIndexInfo, Err: err}
}

// parseKNNResult walks the RESP2 reply [total, key1, fields1, key2, fields2, ...].
// Hits without a parsable score are skipped.
func parseKNNResult(raw []rueidis.RedisMessage, threshold float64) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].AsStrMap()
		if err != nil {
			continue
		}

		d, err := strconv.ParseFloat(pairs[db.FieldVectorScore], 64)
		if err != nil {
			continue
		}
		delete(pairs, db.FieldVectorScore)

		sim := db.SimilarityFromDistance(d)
		if sim <= threshold {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Score: sim, Fields: pairs})
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}
