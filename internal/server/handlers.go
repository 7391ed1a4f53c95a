package server

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status        string `json:"status"`
	TenantsCount  int    `json:"tenants_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.store.ListTenants(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var dbSize int64
	row := s.store.DB().QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	_ = row.Scan(&dbSize)

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		TenantsCount:  len(tenants),
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

// BeaconRequest is an incoming view/convert event from the storefront
// test snippet.
type BeaconRequest struct {
	TestID    string `json:"t"`
	Variant   int    `json:"v"`
	EventType string `json:"e"`
	VisitorID string `json:"vid"`
}

func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	// The beacon is called cross-origin from storefronts.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Tenant-ID")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req BeaconRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.TestID == "" || req.VisitorID == "" {
		httpError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.EventType != "view" && req.EventType != "convert" {
		httpError(w, http.StatusBadRequest, "invalid event type")
		return
	}

	test, err := s.store.GetTest(r.Context(), req.TestID)
	if err != nil {
		storeError(w, err)
		return
	}

	if req.Variant < 0 || req.Variant >= len(test.Variants) {
		httpError(w, http.StatusBadRequest, "invalid variant")
		return
	}

	if err := s.store.RecordEvent(r.Context(), test.ID, req.Variant, req.EventType, req.VisitorID); err != nil {
		storeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
