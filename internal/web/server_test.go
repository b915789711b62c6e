package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ricardo-wurzmann/healthtech/internal/lexicon"
	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/pipeline"
	"github.com/ricardo-wurzmann/healthtech/internal/postprocess"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
	"github.com/ricardo-wurzmann/healthtech/internal/web/handlers"
)

func testServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	ix := lexicon.NewIndex([]lexicon.Term{
		{Text: "febre", EntityType: lexicon.TypeSymptom},
	})
	m := ner.NewMatcher(ix, ner.DefaultPatterns, ner.DefaultConfig())
	p := pipeline.New(segment.NewRegexSegmenter(), m, postprocess.DefaultConfig())

	srv, err := NewServer(cfg, p, handlers.EngineInfo{LexiconTerms: 1, FuzzyEnabled: true, SegmenterKind: "regex"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, DefaultConfig())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDebugEndpoint(t *testing.T) {
	srv := testServer(t, DefaultConfig())

	body := strings.NewReader(`{"text": "Paciente nega febre."}`)
	req := httptest.NewRequest("POST", "/api/pipeline/debug", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res pipeline.DebugResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(res.EntitiesAfterFilter) != 1 {
		t.Fatalf("entities = %+v, want one", res.EntitiesAfterFilter)
	}
	e := res.EntitiesAfterFilter[0]
	if e.Span != "febre" || e.Assertion != "NEGATED" {
		t.Errorf("entity = %q/%s, want febre/NEGATED", e.Span, e.Assertion)
	}
	if res.FinalOutput.DocID != "debug_input" {
		t.Errorf("final_output doc_id = %q", res.FinalOutput.DocID)
	}
}

func TestProcessEndpoint(t *testing.T) {
	srv := testServer(t, DefaultConfig())

	body := strings.NewReader(`{"text": "Paciente com febre."}`)
	req := httptest.NewRequest("POST", "/api/pipeline/process", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out pipeline.DocOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Group != "debug" || len(out.Entities) != 1 {
		t.Errorf("output = %+v", out)
	}
}

func TestDebugEndpointRejectsBadBody(t *testing.T) {
	srv := testServer(t, DefaultConfig())

	for _, body := range []string{`not json`, `{}`, `{"text": ""}`} {
		req := httptest.NewRequest("POST", "/api/pipeline/debug", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestDebugEndpointDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.DebugEndpointEnabled = false
	srv := testServer(t, cfg)

	req := httptest.NewRequest("POST", "/api/pipeline/debug", strings.NewReader(`{"text": "x"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when disabled", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t, DefaultConfig())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res handlers.StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Engine.LexiconTerms != 1 || res.Engine.SegmenterKind != "regex" {
		t.Errorf("engine info = %+v", res.Engine)
	}
}
