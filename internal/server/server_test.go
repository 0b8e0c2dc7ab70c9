package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asaramis/scenario-planning-app/internal/config"
	"github.com/asaramis/scenario-planning-app/internal/logging"
	"github.com/asaramis/scenario-planning-app/internal/service/planner"
	"github.com/asaramis/scenario-planning-app/internal/service/store"
)

func newTestServer(t *testing.T, devMode bool, logOut *bytes.Buffer) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = devMode
	cfg.Log.Level = "debug"

	log := logging.NewWithOutput(cfg.Log, logOut)
	p, err := planner.New(store.NewMemoryStore(), planner.Options{
		Steps:         cfg.Funnel.Steps,
		BaselineStart: cfg.Funnel.BaselineStart,
		RevenueTarget: cfg.Funnel.RevenueTarget,
		PricePerUnit:  cfg.Funnel.PricePerUnit,
		NoOpTolerance: cfg.Funnel.NoOpTolerance,
	}, log)
	if err != nil {
		t.Fatalf("init planner: %v", err)
	}
	return NewServer(cfg, p, log)
}

func TestCORSPreflight(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, false, &buf)

	req := httptest.NewRequest(http.MethodOptions, "/api/scenarios", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT") {
		t.Fatalf("allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, false, &buf)

	req := httptest.NewRequest(http.MethodGet, "/api/scenarios/missing", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "path=/api/scenarios/missing") || !strings.Contains(out, "status=404") {
		t.Fatalf("log output missing request fields: %s", out)
	}
}

func TestRootRoutes(t *testing.T) {
	var buf bytes.Buffer

	s := newTestServer(t, false, &buf)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/api/status" {
		t.Fatalf("root: status %d location %q", w.Code, w.Header().Get("Location"))
	}

	dev := newTestServer(t, true, &buf)
	w = httptest.NewRecorder()
	dev.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scenario", nil))
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != devFrontendURL+"/scenario" {
		t.Fatalf("dev: status %d location %q", w.Code, w.Header().Get("Location"))
	}
}
