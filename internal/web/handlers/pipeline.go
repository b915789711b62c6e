package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ricardo-wurzmann/healthtech/internal/pipeline"
)

// maxDebugBody caps the request body for the debug endpoint (1 MiB).
const maxDebugBody = 1 << 20

// PipelineHandler handles pipeline execution endpoints
type PipelineHandler struct {
	Runner *pipeline.Pipeline
	Config *Config
}

// DebugRequest is the POST body for the debug endpoint
type DebugRequest struct {
	Text string `json:"text"`
}

// Debug runs the pipeline on inline text and returns every intermediate
// stage of the run
func (h *PipelineHandler) Debug(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDebugBody)

	var req DebugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "field 'text' is required")
		return
	}

	result := h.Runner.DebugRun(req.Text)
	writeJSON(w, http.StatusOK, result)
}

// Process runs the pipeline on inline text and returns only the final
// document output
func (h *PipelineHandler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDebugBody)

	var req DebugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "field 'text' is required")
		return
	}

	result := h.Runner.DebugRun(req.Text)
	writeJSON(w, http.StatusOK, result.FinalOutput)
}
