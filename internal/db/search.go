package db

import (
	"encoding/binary"
	"errors"
	"math"
)

// Well-known candidate fields returned by every driver.
const (
	FieldName        = "name"
	FieldProfile     = "profile"
	FieldLinkedinURL = "linkedin_url"
	FieldCVURL       = "cv_url"
	FieldVectorScore = "__vector_score"
)

// KNNQuery is the input for vector similarity search.
// IndexName is the FT index for Redis/Valkey and the SQL function for Postgres.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Threshold    float64 // entries with Score <= Threshold are dropped
	ReturnFields []string
}

// Validate checks the query before it is sent to a driver.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is cosine similarity in [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SimilarityFromDistance converts cosine distance into similarity clamped to [0,1].
func SimilarityFromDistance(d float64) float64 {
	if math.IsNaN(d) {
		return 0
	}
	return min(1, max(0, 1.0-d))
}

// VectorToBytes encodes a vector as a little-endian FLOAT32 blob.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
