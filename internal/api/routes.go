package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Read-only processing surfaces
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/runs", handler.GetRuns).Methods("GET")
	api.HandleFunc("/summaries/latest", handler.GetLatestSummary).Methods("GET")

	return r
}
