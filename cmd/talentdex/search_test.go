package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
)

func TestPrintResults(t *testing.T) {
	results := []match.Result{
		match.New(candidate.Scored{
			Candidate:  candidate.Reconstruct("c1", "", "Go developer", "", "https://cv.example/c1.pdf"),
			Similarity: 0.42,
		}, "Go developer"),
	}

	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, results))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0]["name"])
	assert.InDelta(t, 42, got[0]["accuracy"], 0)
	assert.Equal(t, "https://cv.example/c1.pdf", got[0]["cvUrl"])
	assert.NotContains(t, got[0], "linkedinUrl")

	buf.Reset()
	require.NoError(t, printResults(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())
}
