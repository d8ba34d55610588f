package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
)

type fakeSearcher struct {
	results  []match.Result
	err      error
	got      string
	called   bool
	block    bool
	degraded bool
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]match.Result, error) {
	f.called = true
	f.got = query
	if f.block {
		<-ctx.Done()
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingService, ctx.Err())
	}
	if u := domain.UsageFromContext(ctx); u != nil {
		u.AddEmbeddingTokens(7)
		u.RecordSynthesis(false)
		u.RecordSynthesis(true)
		if f.degraded {
			u.MarkRetrievalDegraded()
		}
	}
	return f.results, f.err
}

type fakeHealth struct {
	report healthuc.Report
}

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newTestRouter(s Searcher, h HealthChecker, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	NewServer(s, h, timeout, zap.NewNop()).Register(r)
	return r
}

func postSearch(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func scored(t *testing.T, id, name string, sim float64, linkedin string) candidate.Scored {
	t.Helper()
	return candidate.Scored{
		Candidate:  candidate.Reconstruct(id, name, "profile of "+id, linkedin, ""),
		Similarity: sim,
	}
}

func TestSearch_Success(t *testing.T) {
	searcher := &fakeSearcher{results: []match.Result{
		match.New(scored(t, "c1", "Ada", 0.91, "https://linkedin.com/in/ada"), "Strong React background."),
		match.New(scored(t, "c2", "Linus", 0.85, ""), "Kernel work, some frontend."),
	}}
	rec := postSearch(t, newTestRouter(searcher, nil, 0), `{"query":"Senior React Developer"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "7", rec.Header().Get("X-Embedding-Tokens"))
	assert.Equal(t, "1", rec.Header().Get("X-Synthesis-Fallbacks"))
	assert.Equal(t, "Senior React Developer", searcher.got)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0]["id"])
	assert.Equal(t, "Ada", got[0]["name"])
	assert.InDelta(t, 91, got[0]["accuracy"], 0)
	assert.Equal(t, "https://linkedin.com/in/ada", got[0]["linkedinUrl"])
	_, hasCV := got[0]["cvUrl"]
	assert.False(t, hasCV, "empty cvUrl must be omitted")
	_, hasLinkedin := got[1]["linkedinUrl"]
	assert.False(t, hasLinkedin, "empty linkedinUrl must be omitted")
}

func TestSearch_NoMatchesIsEmptyArray(t *testing.T) {
	rec := postSearch(t, newTestRouter(&fakeSearcher{results: []match.Result{}}, nil, 0), `{"query":"Rust"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearch_RetrievalDegradedHeader(t *testing.T) {
	rec := postSearch(t, newTestRouter(&fakeSearcher{results: []match.Result{}, degraded: true}, nil, 0), `{"query":"Rust"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get("X-Retrieval-Degraded"))

	rec = postSearch(t, newTestRouter(&fakeSearcher{results: []match.Result{}}, nil, 0), `{"query":"Rust"}`)
	assert.Empty(t, rec.Header().Get("X-Retrieval-Degraded"), "a genuine no-match carries no degraded flag")
}

func TestSearch_LongQueryReachesPipeline(t *testing.T) {
	posting := strings.Repeat("We are hiring a senior engineer to own our React platform. ", 2000)
	body, err := json.Marshal(map[string]string{"query": posting})
	require.NoError(t, err)
	require.Greater(t, len(body), 64<<10)

	searcher := &fakeSearcher{results: []match.Result{}}
	rec := postSearch(t, newTestRouter(searcher, nil, 0), string(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, searcher.called)
	assert.Equal(t, posting, searcher.got)
}

func TestSearch_BodyTooLarge(t *testing.T) {
	body := `{"query":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	searcher := &fakeSearcher{}
	rec := postSearch(t, newTestRouter(searcher, nil, 0), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, CodeRequestTooLarge, decodeError(t, rec).Code)
	assert.False(t, searcher.called)
}

func TestSearch_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"number query", `{"query":42}`},
		{"object query", `{"query":{"text":"go"}}`},
		{"missing query", `{}`},
		{"null query", `{"query":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			rec := postSearch(t, newTestRouter(searcher, nil, 0), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, CodeInvalidQuery, decodeError(t, rec).Code)
			assert.False(t, searcher.called, "pipeline must not run on malformed input")
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid query", fmt.Errorf("validate: %w", domain.ErrInvalidQuery), http.StatusBadRequest, CodeInvalidQuery},
		{"missing credential", domain.NewMissingCredential("embedding"), http.StatusInternalServerError, CodeConfigurationError},
		{"function not found", fmt.Errorf("retrieve: %w", domain.NewSearchFunctionNotFound("match_candidates")), http.StatusInternalServerError, CodeConfigurationError},
		{"embedding", fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingService, errors.New("503 from provider")), http.StatusBadGateway, CodeEmbeddingServiceError},
		{"store", fmt.Errorf("%w: %w", domain.ErrStore, errors.New("connection refused")), http.StatusServiceUnavailable, CodeStoreError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSearch(t, newTestRouter(&fakeSearcher{err: tt.err}, nil, 0), `{"query":"go"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

// Upstream failures refine the generic server error: still 5xx, but the
// code tells a provider outage from an unavailable store.
func TestSearch_UpstreamFailuresAreServerErrors(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingService, errors.New("timeout")),
		fmt.Errorf("retrieve candidates: %w: %w", domain.ErrStore, errors.New("reset")),
	} {
		rec := postSearch(t, newTestRouter(&fakeSearcher{err: err}, nil, 0), `{"query":"go"}`)

		assert.GreaterOrEqual(t, rec.Code, 500)
		assert.Less(t, rec.Code, 600)
		assert.NotEqual(t, CodeInternalError, decodeError(t, rec).Code)
	}
}

func TestSearch_ErrorHidesCause(t *testing.T) {
	err := fmt.Errorf("%w: %w", domain.ErrStore, errors.New("dial tcp 10.0.0.5:6379: refused"))
	rec := postSearch(t, newTestRouter(&fakeSearcher{err: err}, nil, 0), `{"query":"go"}`)

	resp := decodeError(t, rec)
	assert.Equal(t, domain.ErrStore.Error(), resp.Error)
	assert.NotContains(t, resp.Error, "10.0.0.5")
}

func TestSearch_ConfigurationErrorNamesMissingPiece(t *testing.T) {
	err := fmt.Errorf("retrieve: %w", domain.NewSearchFunctionNotFound("match_candidates"))
	rec := postSearch(t, newTestRouter(&fakeSearcher{err: err}, nil, 0), `{"query":"go"}`)

	assert.Contains(t, decodeError(t, rec).Error, "match_candidates")
}

func TestSearch_Timeout(t *testing.T) {
	rec := postSearch(t, newTestRouter(&fakeSearcher{block: true}, nil, 20*time.Millisecond), `{"query":"go"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, CodeTimeout, decodeError(t, rec).Code)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		report     healthuc.Report
		wantStatus int
	}{
		{
			name: "healthy",
			report: healthuc.Report{
				Status: healthuc.Healthy,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "degraded",
			report: healthuc.Report{
				Status: healthuc.Degraded,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeSearcher{}, fakeHealth{report: tt.report}, 0)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.report.Status), body.Status)
			assert.Equal(t, string(tt.report.Checks["database"]), body.Checks["database"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, nil, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, nil, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
