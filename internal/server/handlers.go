package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"spec-synth/internal/assembler"
	"spec-synth/internal/config"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/pipeline"
)

// FromCodeRequest asks for a document generated from a source tree.
type FromCodeRequest struct {
	Root   string `json:"root"`
	Level  string `json:"level"`
	Format string `json:"format"` // yaml (default) or json
}

// EnrichRequest carries an existing specification inline.
type EnrichRequest struct {
	Spec  string `json:"spec"`
	Level string `json:"level"`
}

// InputsRequest asks for the describe requests a run would send.
type InputsRequest struct {
	Root string `json:"root"`
}

// InputsResponse lists the previewed describe requests.
type InputsResponse struct {
	Count    int           `json:"count"`
	Requests []nlp.Request `json:"requests"`
}

func (s *Server) handleFromCode(w http.ResponseWriter, r *http.Request) {
	var req FromCodeRequest
	if !decode(w, r, &req) {
		return
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "":
		format = "yaml"
	case "yaml", "yml", "json":
	default:
		writeError(w, http.StatusBadRequest, "invalid_format", "format must be yaml or json")
		return
	}

	cfg, ok := s.projectConfig(w, req.Root, req.Level)
	if !ok {
		return
	}

	out, err := pipeline.Generate(r.Context(), cfg, pipeline.Options{
		Describer:      s.describer,
		NoSpecFallback: true,
	})
	if errors.Is(err, pipeline.ErrNoEndpoints) {
		writeError(w, http.StatusBadRequest, "no_endpoints", "No endpoints found in source code.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generation_failed", err.Error())
		return
	}

	body, err := out.Render(format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}

	w.Header().Set(OperationsHeader, strconv.Itoa(out.Document.OperationCount()))
	w.Header().Set(EnrichedHeader, strconv.Itoa(out.Enriched))
	writeDocument(w, format, body)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Spec) == "" {
		writeError(w, http.StatusBadRequest, "missing_spec", "spec is required")
		return
	}
	level, err := model.ParseDetailLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_level", err.Error())
		return
	}

	res, err := assembler.EnrichSpec(r.Context(), []byte(req.Spec), "request", s.describer, assembler.SpecOptions{
		Level:   level,
		Timeout: s.cfg.NLP.SpecTimeout,
	})
	var parseErr *assembler.SpecParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadRequest, "invalid_spec", "specification failed to parse or validate", parseErr.Messages...)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "enrichment_failed", err.Error())
		return
	}

	w.Header().Set(OperationsHeader, strconv.Itoa(res.Operations))
	w.Header().Set(EnrichedHeader, strconv.Itoa(res.Enriched))
	writeDocument(w, "yaml", res.YAML)
}

func (s *Server) handleInputs(w http.ResponseWriter, r *http.Request) {
	var req InputsRequest
	if !decode(w, r, &req) {
		return
	}
	cfg, ok := s.projectConfig(w, req.Root, "")
	if !ok {
		return
	}

	reqs, err := pipeline.Requests(cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analysis_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, InputsResponse{Count: len(reqs), Requests: reqs})
}

// projectConfig derives a per-request configuration. It writes the error
// response itself and reports false on bad input.
func (s *Server) projectConfig(w http.ResponseWriter, root, level string) (*config.Config, bool) {
	if strings.TrimSpace(root) == "" {
		writeError(w, http.StatusBadRequest, "missing_root", "root is required")
		return nil, false
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "project_not_found", "Project not found: "+root)
		return nil, false
	}

	cfg := *s.cfg
	cfg.Project.RootDir = root
	if level != "" {
		if _, err := model.ParseDetailLevel(level); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_level", err.Error())
			return nil, false
		}
		cfg.Generation.Level = level
	}
	return &cfg, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return false
	}
	return true
}

func writeDocument(w http.ResponseWriter, format string, body []byte) {
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/yaml")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
