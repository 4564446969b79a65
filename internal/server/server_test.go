package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"spec-synth/internal/config"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
)

const (
	shopRoot = "../../testdata/shop"
	petSpec  = "../../testdata/specfile/openapi.yaml"
)

type stubDescriber struct{}

func (stubDescriber) Describe(ctx context.Context, level model.DetailLevel, req nlp.Request) (*nlp.Response, error) {
	return &nlp.Response{MediumDescription: "Described " + req.Symbol + "."}, nil
}

func setupTestServer(t *testing.T, d nlp.Describer) http.Handler {
	t.Helper()
	return New(config.Default(), d).Router()
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, w.Body.String())
	}
	return resp.Error
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["status"] != "healthy" || body["nlp"] != false {
		t.Errorf("unexpected body %v", body)
	}
	if id := w.Header().Get(RequestIDHeader); len(id) != 8 {
		t.Errorf("expected an 8 character request id, got %q", id)
	}
}

func TestFromCodeYAML(t *testing.T) {
	h := setupTestServer(t, nil)
	w := post(t, h, "/api/docs/from-code", FromCodeRequest{Root: shopRoot})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Header().Get(OperationsHeader); got != "8" {
		t.Errorf("%s = %q, want 8", OperationsHeader, got)
	}
	if got := w.Header().Get(EnrichedHeader); got != "0" {
		t.Errorf("%s = %q, want 0", EnrichedHeader, got)
	}
	if !strings.HasPrefix(w.Body.String(), "openapi: 3.0.3") {
		t.Errorf("unexpected body start: %.60q", w.Body.String())
	}
}

func TestFromCodeJSONWithDescriber(t *testing.T) {
	h := setupTestServer(t, stubDescriber{})
	w := post(t, h, "/api/docs/from-code", FromCodeRequest{Root: shopRoot, Level: "short", Format: "JSON"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !json.Valid(w.Body.Bytes()) {
		t.Fatal("body is not valid JSON")
	}
	if got := w.Header().Get(EnrichedHeader); got != "8" {
		t.Errorf("%s = %q, want 8", EnrichedHeader, got)
	}
}

func TestFromCodeErrors(t *testing.T) {
	h := setupTestServer(t, nil)
	empty := t.TempDir()

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"invalid json", "{", http.StatusBadRequest, "invalid_json"},
		{"missing root", FromCodeRequest{}, http.StatusBadRequest, "missing_root"},
		{"unknown root", FromCodeRequest{Root: empty + "/absent"}, http.StatusNotFound, "project_not_found"},
		{"no endpoints", FromCodeRequest{Root: empty}, http.StatusBadRequest, "no_endpoints"},
		{"bad level", FromCodeRequest{Root: shopRoot, Level: "verbose"}, http.StatusBadRequest, "invalid_level"},
		{"bad format", FromCodeRequest{Root: shopRoot, Format: "pdf"}, http.StatusBadRequest, "invalid_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h, "/api/docs/from-code", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("error = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestEnrich(t *testing.T) {
	spec, err := os.ReadFile(petSpec)
	if err != nil {
		t.Fatal(err)
	}
	h := setupTestServer(t, stubDescriber{})
	w := post(t, h, "/api/docs/enrich", EnrichRequest{Spec: string(spec)})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(OperationsHeader); got != "2" {
		t.Errorf("%s = %q, want 2", OperationsHeader, got)
	}
	if got := w.Header().Get(EnrichedHeader); got != "2" {
		t.Errorf("%s = %q, want 2", EnrichedHeader, got)
	}
	if !strings.Contains(w.Body.String(), "Described getPet.") {
		t.Errorf("enriched description missing:\n%s", w.Body.String())
	}
}

func TestEnrichRejectsInvalidSpec(t *testing.T) {
	h := setupTestServer(t, stubDescriber{})

	w := post(t, h, "/api/docs/enrich", EnrichRequest{Spec: "info:\n  title: x\n"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "invalid_spec" || len(resp.Details) == 0 {
		t.Errorf("unexpected error response %+v", resp)
	}

	w = post(t, h, "/api/docs/enrich", EnrichRequest{})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "missing_spec" {
		t.Errorf("empty spec: got %d %s", w.Code, w.Body.String())
	}
}

func TestInputs(t *testing.T) {
	h := setupTestServer(t, nil)
	w := post(t, h, "/api/docs/inputs", InputsRequest{Root: shopRoot})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp InputsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 8 || len(resp.Requests) != 8 {
		t.Fatalf("expected 8 requests, got %d", resp.Count)
	}
	if resp.Requests[0].Signature != "GET /api/orders/{id}" {
		t.Errorf("first request = %+v", resp.Requests[0])
	}
}

func TestCORSPreflight(t *testing.T) {
	h := setupTestServer(t, nil)
	req := httptest.NewRequest("OPTIONS", "/api/docs/from-code", nil)
	req.Header.Set("Origin", "http://editor.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response lacks Access-Control-Allow-Origin")
	}
}

func TestShutdownWithoutListen(t *testing.T) {
	s := New(config.Default(), nil)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}
