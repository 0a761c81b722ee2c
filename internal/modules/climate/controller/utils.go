package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/selection"
)

var validate = validator.New()

// selectionRequest is the body of POST /api/v1/selection. A zero year means
// the city's latest year.
type selectionRequest struct {
	City string `json:"city" validate:"required"`
	Year int    `json:"year" validate:"gte=0"`
}

type selectionResponse struct {
	City  string `json:"city"`
	Year  int    `json:"year"`
	Title string `json:"title"`
	Days  int    `json:"days"`
}

func newSelectionResponse(snap selection.Snapshot) selectionResponse {
	return selectionResponse{
		City:  snap.State.City,
		Year:  snap.State.Year,
		Title: snap.Title,
		Days:  len(snap.Rows),
	}
}

// parseSelectionQuery reads ?city=&year=. year is zero when absent.
func parseSelectionQuery(r *http.Request) (city string, year int, err error) {
	q := r.URL.Query()
	city = strings.TrimSpace(q.Get("city"))
	year, err = parseYear(q.Get("year"))
	if err != nil {
		return "", 0, err
	}
	return city, year, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'year' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'year' must be > 0")
	}
	return n, nil
}

// resolveYear fills in the latest year of city when year is zero. Unknown
// cities keep year zero so Select rejects them.
func resolveYear(catalog *repository.Catalog, city string, year int) int {
	if year != 0 {
		return year
	}
	latest, _ := catalog.LatestYear(city)
	return latest
}
