package httpapi

import (
	"net/http"

	"ghcn-dashboard/internal/modules/climate/repository"
)

func NewMux(catalog *repository.Catalog, archive Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, catalog, archive)
	return mux
}
