package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jonesrussell/review-triage/internal/api"
	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/database"
	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/processor"
	"github.com/jonesrussell/review-triage/internal/storage"
	"github.com/jonesrussell/review-triage/internal/triage"
)

type staticSource struct {
	reviews []domain.Review
}

func (s *staticSource) Fetch(_ context.Context, n int) ([]domain.Review, error) {
	if n < len(s.reviews) {
		return s.reviews[:n], nil
	}
	return s.reviews, nil
}

func testRouter(t *testing.T, jwtSecret string, reviews []domain.Review) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()

	db, err := database.Connect(config.DatabaseConfig{
		Driver:     "sqlite3",
		SQLitePath: filepath.Join(t.TempDir(), "triage.db"),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tags := database.NewTagsRepository(db)
	tickets := database.NewTicketsRepository(db)
	runs := database.NewRunsRepository(db)

	runner := processor.NewRunner(processor.Config{
		Source:   &staticSource{reviews: reviews},
		Pipeline: triage.NewPipeline(triage.NewCategoryClassifier(log), nil, nil, log),
		Registry: tags,
		Sink:     storage.NewDatabaseSink(tickets, log),
		Runs:     runs,
		Logger:   log,
	})

	handler := api.NewHandler(api.HandlerConfig{
		Runner:       runner,
		Runs:         runs,
		Tickets:      tickets,
		Readiness:    func(ctx context.Context) error { return db.PingContext(ctx) },
		Service:      "review-triage",
		Version:      "test",
		BatchSize:    10,
		MaxBatchSize: 100,
		Logger:       log,
	})

	router := gin.New()
	api.SetupRoutes(router, handler, jwtSecret)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriageBatch(t *testing.T) {
	router := testRouter(t, "", nil)

	req := api.TriageRequest{Reviews: []domain.Review{
		{ID: "r1", Text: "The app keeps showing a loading error", Score: 2, Reviewer: "carol"},
		{ID: "r2", Text: "Great app!", Score: 5, Reviewer: "bob"},
		{ID: "r3", Text: "Great app!", Score: 5, Reviewer: "bob"},
	}}

	w := doJSON(t, router, http.MethodPost, "/api/v1/triage", req, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp api.TriageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RunID == "" {
		t.Error("missing run_id")
	}
	if resp.Summary.Classified != 2 || resp.Summary.Spam != 1 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(resp.Results))
	}
	if resp.Results[0].Category != domain.CategoryBug {
		t.Errorf("first category = %q, want bug", resp.Results[0].Category)
	}

	// The recorded run is retrievable.
	w = doJSON(t, router, http.MethodGet, "/api/v1/runs/"+resp.RunID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get run status = %d", w.Code)
	}
}

func TestTriageBatch_Validation(t *testing.T) {
	router := testRouter(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/triage", api.TriageRequest{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", w.Code)
	}

	big := api.TriageRequest{Reviews: make([]domain.Review, 101)}
	w = doJSON(t, router, http.MethodPost, "/api/v1/triage", big, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d, want 400", w.Code)
	}
}

func TestStartRun(t *testing.T) {
	router := testRouter(t, "", []domain.Review{
		{ID: "r1", Text: "amazing deals this weekend", Score: 5, Reviewer: "alice"},
	})

	w := doJSON(t, router, http.MethodPost, "/api/v1/runs", api.StartRunRequest{Count: 5}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp api.TriageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Summary.Fetched != 1 || resp.Summary.Classified != 1 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	router := testRouter(t, "", nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/runs/run-404", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetStats(t *testing.T) {
	router := testRouter(t, "", nil)

	req := api.TriageRequest{Reviews: []domain.Review{
		{ID: "r1", Text: "The app keeps showing a loading error", Score: 2, Reviewer: "carol"},
	}}
	if w := doJSON(t, router, http.MethodPost, "/api/v1/triage", req, nil); w.Code != http.StatusOK {
		t.Fatalf("triage status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}

	var stats api.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.Categories[domain.CategoryBug] != 1 {
		t.Errorf("bug tickets = %d, want 1", stats.Categories[domain.CategoryBug])
	}
	if stats.Runs.Fetched != 1 {
		t.Errorf("runs fetched = %d, want 1", stats.Runs.Fetched)
	}
}

func TestJWTProtection(t *testing.T) {
	const secret = "test-secret"
	router := testRouter(t, secret, nil)

	// Health stays public.
	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}

	// Missing token is rejected.
	w = doJSON(t, router, http.MethodGet, "/api/v1/stats", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}

	// A valid token is accepted.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		Sub: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/stats", nil, map[string]string{
		"Authorization": "Bearer " + signed,
	})
	if w.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}
