package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"melify/internal/ratelimit"
	"melify/pkg/domain"
	"melify/pkg/queue"
	"melify/pkg/store"
	"melify/services/analysis/internal/app"
)

const testToken = "internal-secret"

type downGenerator struct{}

func (downGenerator) GenerateText(context.Context, string, string) (string, error) {
	return "", errors.New("connection refused")
}

type brokenQuoteStore struct {
	*store.MemoryStore
}

func (brokenQuoteStore) InsertQuote(context.Context, domain.Quote) (domain.Quote, error) {
	return domain.Quote{}, errors.New("disk full")
}

type fixture struct {
	srv   *httptest.Server
	store *store.MemoryStore
}

func newFixture(t *testing.T, dataStore store.Store, mem *store.MemoryStore, rateLimit int) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a, err := app.New(app.Config{
		Store:          dataStore,
		Redis:          client,
		Generator:      downGenerator{},
		Strategy:       "generative",
		DisableWorkers: true,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	var limiter *ratelimit.FixedWindowLimiter
	if rateLimit > 0 {
		limiter, err = ratelimit.NewFixedWindowLimiter(client, "test:ratelimit", rateLimit, time.Minute)
		if err != nil {
			t.Fatalf("new limiter: %v", err)
		}
	}
	srv := httptest.NewServer(New(Config{App: a, InternalToken: testToken, Limiter: limiter}).Router())
	t.Cleanup(srv.Close)

	if err := mem.SaveJournal(context.Background(), domain.JournalEntry{
		ID:         "j1",
		UserID:     "u1",
		Content:    "I feel hopeless and alone, nothing matters",
		Mood:       domain.MoodSad,
		MoodRating: 2,
		CreatedAt:  time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("save journal: %v", err)
	}
	return fixture{srv: srv, store: mem}
}

func newMemoryFixture(t *testing.T, rateLimit int) fixture {
	mem := store.NewMemoryStore()
	return newFixture(t, mem, mem, rateLimit)
}

func (f fixture) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("X-Internal-Token", token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	f := newMemoryFixture(t, 0)
	resp := f.do(t, http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRequiresInternalToken(t *testing.T) {
	f := newMemoryFixture(t, 0)
	if resp := f.do(t, http.MethodPost, "/analysis/runs", "", `{"journalId":"j1","userId":"u1"}`); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodPost, "/analysis/runs", "wrong", `{"journalId":"j1","userId":"u1"}`); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.StatusCode)
	}
}

func TestRunAnalysis(t *testing.T) {
	f := newMemoryFixture(t, 0)
	resp := f.do(t, http.MethodPost, "/analysis/runs", testToken, `{"journalId":"j1","userId":"u1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Journal struct {
			MentalHealthClassification string  `json:"mentalHealthClassification"`
			RiskScore                  float64 `json:"riskScore"`
		} `json:"journal"`
		Quote struct {
			Quote string `json:"quote"`
		} `json:"quote"`
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Journal.MentalHealthClassification != "high_risk" || body.Journal.RiskScore != 1.0 {
		t.Fatalf("unexpected journal %+v", body.Journal)
	}
	if body.Quote.Quote == "" || len(body.Recommendations) != 4 {
		t.Fatalf("unexpected result quote=%q recs=%d", body.Quote.Quote, len(body.Recommendations))
	}

	if resp := f.do(t, http.MethodPost, "/analysis/runs", testToken, `{"journalId":"j1","userId":"u1"}`); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on rerun, got %d", resp.StatusCode)
	}
}

func TestRunAnalysisErrors(t *testing.T) {
	f := newMemoryFixture(t, 0)
	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"unknown journal", http.MethodPost, `{"journalId":"nope","userId":"u1"}`, http.StatusNotFound},
		{"foreign user", http.MethodPost, `{"journalId":"j1","userId":"u2"}`, http.StatusNotFound},
		{"invalid json", http.MethodPost, `{`, http.StatusBadRequest},
		{"missing ids", http.MethodPost, `{"journalId":"j1"}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, tc.method, "/analysis/runs", testToken, tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestRunAnalysisPartialPersistence(t *testing.T) {
	mem := store.NewMemoryStore()
	f := newFixture(t, brokenQuoteStore{mem}, mem, 0)

	resp := f.do(t, http.MethodPost, "/analysis/runs", testToken, `{"journalId":"j1","userId":"u1"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body struct {
		FailedSteps []string        `json:"failedSteps"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.FailedSteps) != 1 || body.FailedSteps[0] != "insert_quote" {
		t.Fatalf("unexpected failed steps %v", body.FailedSteps)
	}
	if len(body.Result) == 0 {
		t.Fatalf("expected partial result in body")
	}
	j, _, _ := mem.GetJournal(context.Background(), "j1", "u1")
	if !j.IsAIAnalyzed {
		t.Fatalf("journal update should not be rolled back")
	}
}

func TestEnqueueAndGetJob(t *testing.T) {
	f := newMemoryFixture(t, 0)
	resp := f.do(t, http.MethodPost, "/analysis/jobs", testToken, `{"journalId":"j1","userId":"u1"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	var job queue.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.ID == "" || job.Status != queue.StatusQueued || job.JournalID != "j1" {
		t.Fatalf("unexpected job %+v", job)
	}

	got := f.do(t, http.MethodGet, "/analysis/jobs/"+job.ID, testToken, "")
	if got.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", got.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/analysis/jobs/unknown", testToken, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/analysis/jobs/a/b", testToken, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for nested path, got %d", resp.StatusCode)
	}
}

func TestRateLimitPerUser(t *testing.T) {
	f := newMemoryFixture(t, 1)
	if resp := f.do(t, http.MethodPost, "/analysis/jobs", testToken, `{"journalId":"j1","userId":"u1"}`); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("first request expected 202, got %d", resp.StatusCode)
	}
	resp := f.do(t, http.MethodPost, "/analysis/jobs", testToken, `{"journalId":"j1","userId":"u1"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if resp := f.do(t, http.MethodPost, "/analysis/jobs", testToken, `{"journalId":"j1","userId":"u2"}`); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("other user expected 202, got %d", resp.StatusCode)
	}
}
