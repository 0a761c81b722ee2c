package controller

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"ghcn-dashboard/internal/modules/climate/export"
	"ghcn-dashboard/internal/modules/climate/selection"
	"ghcn-dashboard/internal/modules/climate/types"
	"ghcn-dashboard/internal/modules/climate/views"
	"ghcn-dashboard/internal/utils"
)

// applyQuery selects the (city, year) from the query string when a city is
// given and returns the pair when it was refused. It reports false for a bad
// query, after writing the error.
func (c *climateControllerImpl) applyQuery(w http.ResponseWriter, r *http.Request) (*selection.State, bool) {
	city, year, err := parseSelectionQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if city == "" {
		return nil, true
	}
	year = resolveYear(c.view.Catalog(), city, year)
	if !c.view.Select(city, year) {
		slog.Warn("selection rejected", "city", city, "year", year)
		return &selection.State{City: city, Year: year}, true
	}
	return nil, true
}

func (c *climateControllerImpl) renderView(w http.ResponseWriter, rejected *selection.State, render func(*bytes.Buffer, *views.ViewData) error) {
	data, err := views.NewViewData(c.view.Snapshot(), rejected)
	if err != nil {
		slog.Error("view: chart render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, data); err != nil {
		slog.Error("view: template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rejected, ok := c.applyQuery(w, r)
	if !ok {
		return
	}
	c.renderView(w, rejected, func(buf *bytes.Buffer, data *views.ViewData) error {
		return views.RenderDashboard(buf, data)
	})
}

func (c *climateControllerImpl) handleViewPartial(w http.ResponseWriter, r *http.Request) {
	rejected, ok := c.applyQuery(w, r)
	if !ok {
		return
	}
	c.renderView(w, rejected, func(buf *bytes.Buffer, data *views.ViewData) error {
		return views.RenderViewPartial(buf, data)
	})
}

// handleChart renders a chart without changing the selection. Without a city
// it renders the current selection.
func (c *climateControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	city, year, err := parseSelectionQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		rows  []types.DailyRecord
		title string
	)
	if city == "" {
		snap := c.view.Snapshot()
		if snap.Empty() {
			utils.WriteError(w, http.StatusNotFound, "no station data available")
			return
		}
		rows, title = snap.Rows, snap.Title
	} else {
		var ok bool
		year = resolveYear(c.view.Catalog(), city, year)
		rows, title, ok = c.view.Preview(city, year)
		if !ok {
			utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("no data for %q in %d", city, year))
			return
		}
	}

	var buf bytes.Buffer
	if err := views.RenderChart(&buf, title, rows); err != nil {
		slog.Error("chart render failed", "city", city, "year", year, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	utils.WriteBody(w, http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (c *climateControllerImpl) handleCities(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.view.Catalog().Cities())
}

func (c *climateControllerImpl) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	snap := c.view.Snapshot()
	if snap.Empty() {
		utils.WriteError(w, http.StatusNotFound, "no station data available")
		return
	}
	utils.WriteJSON(w, http.StatusOK, newSelectionResponse(snap))
}

func (c *climateControllerImpl) handlePostSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "'city' is required and 'year' must be >= 0")
		return
	}

	year := resolveYear(c.view.Catalog(), req.City, req.Year)
	if !c.view.Select(req.City, year) {
		utils.WriteError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("no data for %q in %d; selection unchanged", req.City, year))
		return
	}
	utils.WriteJSON(w, http.StatusOK, newSelectionResponse(c.view.Snapshot()))
}

type recordsResponse struct {
	Station types.Station       `json:"station"`
	Year    int                 `json:"year,omitempty"`
	Records []types.DailyRecord `json:"records"`
}

// stationRows resolves the station and optional year of a records request,
// writing the error response itself when it cannot.
func (c *climateControllerImpl) stationRows(w http.ResponseWriter, r *http.Request) (types.Station, []types.DailyRecord, int, bool) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing station id")
		return types.Station{}, nil, 0, false
	}
	year, err := parseYear(r.URL.Query().Get("year"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return types.Station{}, nil, 0, false
	}

	table, ok := c.view.Catalog().TableByStation(id)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("station %q has no data", id))
		return types.Station{}, nil, 0, false
	}
	if year == 0 {
		return table.Station, table.Records, 0, true
	}
	rows := table.Year(year)
	if len(rows) == 0 {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("station %q has no data for %d", id, year))
		return types.Station{}, nil, 0, false
	}
	return table.Station, rows, year, true
}

func (c *climateControllerImpl) handleRecords(w http.ResponseWriter, r *http.Request) {
	station, rows, year, ok := c.stationRows(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, recordsResponse{Station: station, Year: year, Records: rows})
}

func (c *climateControllerImpl) handleRecordsXLSX(w http.ResponseWriter, r *http.Request) {
	station, rows, year, ok := c.stationRows(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, station, rows, year); err != nil {
		slog.Error("xlsx export failed", "station_id", station.ID, "year", year, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(station.ID, year)))
	utils.WriteBody(w, http.StatusOK, export.ContentType, buf.Bytes())
}
