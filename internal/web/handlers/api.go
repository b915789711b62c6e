package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		DebugEndpointEnabled bool `json:"debug_endpoint_enabled"`
		StatsEnabled         bool `json:"stats_enabled"`
	} `json:"features"`
}

// EngineInfo describes the loaded resources, set once at startup
type EngineInfo struct {
	LexiconTerms       int    `json:"lexicon_terms"`
	VocabularyConcepts int    `json:"vocabulary_concepts"`
	VocabularyEntries  int    `json:"vocabulary_entries"`
	CanonicalMode      bool   `json:"canonical_mode"`
	FuzzyEnabled       bool   `json:"fuzzy_enabled"`
	SegmenterKind      string `json:"segmenter"`
}

// APIHandler handles general API endpoints
type APIHandler struct {
	Info    EngineInfo
	Started time.Time
	Config  *Config
}

// StatsResponse represents overall engine statistics
type StatsResponse struct {
	Engine        EngineInfo `json:"engine"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

// GetStats returns engine statistics
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Engine:        h.Info,
		UptimeSeconds: time.Since(h.Started).Seconds(),
	})
}

// Health reports service liveness
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
