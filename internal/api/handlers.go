package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stockpipe/data-clean-service/internal/database"
	"github.com/stockpipe/data-clean-service/internal/models"
	"github.com/stockpipe/data-clean-service/internal/status"
)

// Handler holds dependencies for HTTP handlers. db is nil when the history
// archive is disabled.
type Handler struct {
	db     *database.DB
	status *status.Store
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, statusStore *status.Store) *Handler {
	return &Handler{
		db:     db,
		status: statusStore,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.status.Ping(r.Context()); err != nil {
		http.Error(w, "status store unreachable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus handles GET /api/v1/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	fields, err := h.status.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, fields)
}

// GetRuns handles GET /api/v1/runs
func (h *Handler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "history archive is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var (
		runs []*models.ProcessingRun
		err  error
	)
	if fileType := r.URL.Query().Get("type"); fileType != "" {
		if fileType != models.KindQuotes && fileType != models.KindHistorical {
			http.Error(w, "invalid file type", http.StatusBadRequest)
			return
		}
		runs, err = h.db.GetRunsByFileType(fileType, limit)
	} else {
		runs, err = h.db.GetRecentRuns(limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// GetLatestSummary handles GET /api/v1/summaries/latest
func (h *Handler) GetLatestSummary(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "history archive is disabled", http.StatusServiceUnavailable)
		return
	}

	record, err := h.db.GetLatestBatchRecord()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
