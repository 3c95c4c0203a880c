package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/store"
)

const endToEndBody = `{
	"resume_text": "Experienced with Node.js, MongoDB, Docker, and machine learning pipelines.",
	"requirements": ["Node.js", "MongoDB", "Docker", "Kubernetes", "Machine Learning"]
}`

func newTestServer(t *testing.T, scorer scoring.Scorer, withStore bool) http.Handler {
	t.Helper()

	var results ResultStore
	if withStore {
		s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "results.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		results = s
	}

	return New(Config{}, scorer, results, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)

	rec := do(t, h, http.MethodPost, "/v1/score", endToEndBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Score != 35 {
		t.Fatalf("expected 35, got %v", resp.Score)
	}
	want := []string{"nodejs", "mongodb", "docker", "machine learning"}
	if !reflect.DeepEqual(resp.MatchedTerms, want) {
		t.Fatalf("expected %v, got %v", want, resp.MatchedTerms)
	}
	if resp.Strategy != scoring.StrategyLocal || resp.ResultID != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Terms) != 5 || resp.Terms[4].Tier != matching.TierPhrase {
		t.Fatalf("unexpected term breakdown: %+v", resp.Terms)
	}
}

func TestScoreEndpointWeightsAndNormalize(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)

	body := `{
		"resume_text": "Go and Docker",
		"requirements": ["Go", {"term": "Docker", "weight": 3}],
		"options": {"normalize": true, "max_score": 10}
	}`
	rec := do(t, h, http.MethodPost, "/v1/score", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Score != 10 {
		t.Fatalf("expected normalized 10, got %v", resp.Score)
	}
}

func TestScoreEndpointValidation(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)

	cases := map[string]string{
		"malformed json":      `{"resume_text": `,
		"numeric requirement": `{"resume_text": "go", "requirements": [42]}`,
		"empty term":          `{"resume_text": "go", "requirements": [{"weight": 2}]}`,
		"negative max score":  `{"resume_text": "go", "requirements": ["go"], "options": {"max_score": -1}}`,
		"job without app":     `{"resume_text": "go", "requirements": ["go"], "job_id": "backend"}`,
		"unknown field":       `{"resume": "go"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/score", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil || payload["error"] == "" {
				t.Fatalf("expected error payload, got %s", rec.Body.String())
			}
		})
	}
}

func TestScoreEndpointEmptyInputs(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)

	rec := do(t, h, http.MethodPost, "/v1/score", `{"resume_text": "", "requirements": ["go"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"matched_terms":[]`) {
		t.Fatalf("expected empty matched terms array, got %s", rec.Body.String())
	}
}

type failingScorer struct {
	err error
}

func (f failingScorer) Name() string { return scoring.StrategyRemote }

func (f failingScorer) Score(context.Context, scoring.Request) (*matching.Result, error) {
	return nil, f.err
}

func TestScoreEndpointMapsRemoteErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: scoring.ErrServiceUnavailable, status: http.StatusServiceUnavailable},
		{err: fmt.Errorf("quota: %w", scoring.ErrRateLimited), status: http.StatusTooManyRequests},
		{err: scoring.ErrInvalidResponse, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		h := newTestServer(t, failingScorer{err: tt.err}, false)
		rec := do(t, h, http.MethodPost, "/v1/score", endToEndBody)
		if rec.Code != tt.status {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.status, rec.Code)
		}
	}
}

func TestScoreIsPersistedAndListed(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), true)

	for i, text := range []string{"Docker only", "Node.js MongoDB Docker"} {
		body := fmt.Sprintf(`{"resume_text": %q, "requirements": ["Node.js", "MongoDB", "Docker"], "job_id": "backend", "application_id": "a%d"}`, text, i)
		rec := do(t, h, http.MethodPost, "/v1/score", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp ScoreResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.ResultID == "" {
			t.Fatalf("expected result id for persisted score")
		}
	}

	rec := do(t, h, http.MethodGet, "/v1/jobs/backend/results?limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Results []store.Record `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Results) != 2 || payload.Results[0].ApplicationID != "a1" || payload.Results[0].Score != 30 {
		t.Fatalf("unexpected results: %+v", payload.Results)
	}

	if rec := do(t, h, http.MethodGet, "/v1/jobs/backend/results?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestGetResult(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), true)

	body := `{"resume_text": "Docker", "requirements": ["Docker"], "job_id": "backend", "application_id": "a1"}`
	var resp ScoreResponse
	if err := json.Unmarshal(do(t, h, http.MethodPost, "/v1/score", body).Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, http.MethodGet, "/v1/results/"+resp.ResultID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != resp.ResultID || got.ApplicationID != "a1" || got.Score != 10 {
		t.Fatalf("unexpected record: %+v", got)
	}

	if rec := do(t, h, http.MethodGet, "/v1/results/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

type fallbackScorer struct{}

func (fallbackScorer) Name() string { return scoring.StrategyRemote }

func (fallbackScorer) Score(context.Context, scoring.Request) (*matching.Result, error) {
	result := matching.Empty()
	result.Fallback = scoring.ErrServiceUnavailable.Error()
	return result, nil
}

func TestFallbackScoreIsNotPersisted(t *testing.T) {
	h := newTestServer(t, fallbackScorer{}, true)

	body := `{"resume_text": "Docker", "requirements": ["Docker"], "job_id": "backend", "application_id": "a1"}`
	rec := do(t, h, http.MethodPost, "/v1/score", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ResultID != "" || resp.Fallback == "" {
		t.Fatalf("expected unsaved fallback response, got %+v", resp)
	}

	var payload struct {
		Results []store.Record `json:"results"`
	}
	if err := json.Unmarshal(do(t, h, http.MethodGet, "/v1/jobs/backend/results", "").Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Results) != 0 {
		t.Fatalf("expected no stored results, got %+v", payload.Results)
	}
}

func TestJobResultsWithoutStore(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)
	if rec := do(t, h, http.MethodGet, "/v1/jobs/backend/results", ""); rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/results/some-id", ""); rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, scoring.NewLocal(matching.Config{}), false)

	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/score", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /v1/score, got %d", rec.Code)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv := New(Config{Listen: "127.0.0.1:0"}, scoring.NewLocal(matching.Config{}), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
