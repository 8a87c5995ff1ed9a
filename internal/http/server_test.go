package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"financeviz/internal/core"
	"financeviz/internal/log"
	"financeviz/internal/middleware/ratelimit"
	"financeviz/internal/services"
	"financeviz/internal/source/memory"
)

type fakeExplorer struct {
	years []int
	err   error
}

func (f *fakeExplorer) Years(context.Context) ([]int, error) { return f.years, f.err }

func (f *fakeExplorer) ElementView(_ context.Context, id string, year int) (*services.ElementView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ElementView{ContentID: id, Year: year}, nil
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func newTestServer(e Explorer, opts ...Option) *Server {
	return NewServer(":0", e, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.10:4000"
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func TestFinanceDetailsStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		path     string
		wantCode int
		apiError bool
	}{
		{"ok", nil, "/api/finance-details/DF?year=2021", http.StatusOK, false},
		{"bad year", nil, "/api/finance-details/DF?year=x", http.StatusBadRequest, true},
		{"unknown element", core.ErrElementNotFound, "/api/finance-details/ZZ", http.StatusNotFound, true},
		{"unknown year", core.ErrYearNotFound, "/api/finance-details/DF?year=1999", http.StatusNotFound, true},
		{"backend failure", errors.New("disk on fire"), "/api/finance-details/DF", http.StatusInternalServerError, true},
		{"no id", nil, "/api/finance-details/", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, newTestServer(&fakeExplorer{err: tt.err}), tt.path)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.apiError {
				var body ErrorResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
					t.Fatalf("error body: %v", err)
				}
				if body.RequestID == "" {
					t.Fatal("error body should carry the request id")
				}
				if tt.wantCode == http.StatusInternalServerError && body.Error != "internal error" {
					t.Fatalf("internal errors must not leak: %q", body.Error)
				}
			}
		})
	}
}

func TestFinanceDetailsEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	total := func(c int64) *core.Money { return &core.Money{Cents: c} }
	for _, y := range []int{2020, 2021} {
		tree := &core.Node{ID: "total", Children: core.Children{
			{ID: "DF", Children: core.Children{
				{ID: "DF.1", Total: total(int64(y))},
				{ID: "DF.2", Total: total(100)},
			}},
		}}
		if err := store.SaveAggregated(ctx, y, tree); err != nil {
			t.Fatalf("SaveAggregated: %v", err)
		}
	}
	explorer := services.NewExplorer(store, store, services.WithLogger(quietLogger()))
	s := newTestServer(explorer)

	rr := get(t, s, "/api/finance-details/DF")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("Content-Type = %q", ct)
	}
	var view services.ElementView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ContentID != "DF" || view.Year != 2021 {
		t.Fatalf("view = %s/%d, want DF/2021", view.ContentID, view.Year)
	}
	if got := len(view.PartitionByYear[2020]); got != 2 {
		t.Fatalf("2020 partition has %d entries, want 2", got)
	}

	rr = get(t, s, "/api/years")
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"years\":[2020,2021]}\n" {
		t.Fatalf("years: %d %s", rr.Code, rr.Body.String())
	}
}

func TestHealthReadyAndMetrics(t *testing.T) {
	failing := errors.New("db locked")
	s := newTestServer(&fakeExplorer{},
		WithReadinessCheck("storage", func(context.Context) error { return nil }),
		WithReadinessCheck("amqp", func(context.Context) error { return failing }),
	)

	if rr := get(t, s, "/healthz"); rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rr.Code)
	}

	rr := get(t, s, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d", rr.Code)
	}
	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ready); err != nil {
		t.Fatalf("decode readyz: %v", err)
	}
	if ready.Status != "not_ready" || ready.Checks["storage"] != "ok" || ready.Checks["amqp"] != "failed: db locked" {
		t.Fatalf("unexpected readiness: %+v", ready)
	}

	if rr := get(t, s, "/metrics"); rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
}

func TestSecurityHeadersAndRateLimit(t *testing.T) {
	s := newTestServer(&fakeExplorer{years: []int{2021}},
		WithRateLimit(ratelimit.Config{RequestsPerSecond: 0.01, Burst: 1}))

	rr := get(t, s, "/api/years")
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rr.Code)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing security headers")
	}

	rr = get(t, s, "/api/years")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}

	if rr := get(t, s, "/healthz"); rr.Code != http.StatusOK {
		t.Fatalf("health checks are not rate limited, got %d", rr.Code)
	}
}
