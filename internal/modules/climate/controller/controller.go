package controller

import (
	"net/http"

	"ghcn-dashboard/internal/modules/climate/selection"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	view *selection.View
}

func NewClimateController(view *selection.View) ClimateController {
	return &climateControllerImpl{view: view}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/view", c.handleViewPartial)
	mux.HandleFunc("GET /chart.svg", c.handleChart)

	mux.HandleFunc("GET /api/v1/cities", c.handleCities)
	mux.HandleFunc("GET /api/v1/selection", c.handleGetSelection)
	mux.HandleFunc("POST /api/v1/selection", c.handlePostSelection)
	mux.HandleFunc("GET /api/v1/stations/{id}/records", c.handleRecords)
	mux.HandleFunc("GET /api/v1/stations/{id}/records.xlsx", c.handleRecordsXLSX)
}
