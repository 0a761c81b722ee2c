package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/utils"
)

// Pinger is the archive connectivity check. A nil Pinger means the archive
// is disabled.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	catalog *repository.Catalog
	archive Pinger
}

type healthResponse struct {
	Status   string `json:"status"`
	Stations int    `json:"stations"`
	Archive  string `json:"archive"`
}

func NewHealthchecker(catalog *repository.Catalog, archive Pinger) healthchecker {
	return &healthcheckerImpl{catalog: catalog, archive: archive}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Stations: h.catalog.Len(), Archive: "disabled"}

	if h.archive != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.archive.Ping(ctx); err != nil {
			slog.Error("failed to check archive connectivity", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to check archive connectivity")
			return
		}
		resp.Archive = "ok"
	}

	// No usable station is not fatal; the dashboard serves its empty layout.
	if resp.Stations == 0 {
		resp.Status = "degraded"
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func registerHealthcheck(mux *http.ServeMux, catalog *repository.Catalog, archive Pinger) {
	healthchecker := NewHealthchecker(catalog, archive)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
