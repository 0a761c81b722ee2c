// Package selection owns the dashboard's single live (city, year) choice.
package selection

import (
	"fmt"
	"sync"

	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/types"
)

type State struct {
	City string
	Year int
}

// Snapshot is everything needed to render the view at one instant.
type Snapshot struct {
	State  State
	Title  string
	Rows   []types.DailyRecord
	Cities []types.City
}

func (s Snapshot) Empty() bool {
	return len(s.Cities) == 0
}

// Years returns the selectable years of the current city.
func (s Snapshot) Years() []int {
	for _, c := range s.Cities {
		if c.Name == s.State.City {
			return c.Years
		}
	}
	return nil
}

type View struct {
	catalog *repository.Catalog

	mu    sync.RWMutex
	state State
	rows  []types.DailyRecord
}

// New creates the view with the first city alphabetically and its latest year.
func New(catalog *repository.Catalog) *View {
	v := &View{catalog: catalog}
	cities := catalog.Cities()
	if len(cities) == 0 {
		return v
	}
	first := cities[0]
	latest, _ := catalog.LatestYear(first.Name)
	v.apply(first.Name, latest)
	return v
}

// Title is the chart heading for a selection.
func Title(city string, year int) string {
	return fmt.Sprintf("Weather Data for %s in %d", city, year)
}

// Select switches the view to (city, year). An unknown city or a year with no
// data is refused and the view is left untouched.
func (v *View) Select(city string, year int) bool {
	if !v.catalog.HasYear(city, year) {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.apply(city, year)
	return true
}

// apply requires v.mu to be held (or v to be unshared).
func (v *View) apply(city string, year int) {
	table, _ := v.catalog.TableByCity(city)
	v.state = State{City: city, Year: year}
	v.rows = table.Year(year)
}

func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	snap := Snapshot{
		State:  v.state,
		Rows:   v.rows,
		Cities: v.catalog.Cities(),
	}
	if v.state.City != "" {
		snap.Title = Title(v.state.City, v.state.Year)
	}
	return snap
}

// Preview returns the rows and title for (city, year) without touching the
// current selection.
func (v *View) Preview(city string, year int) ([]types.DailyRecord, string, bool) {
	table, ok := v.catalog.TableByCity(city)
	if !ok {
		return nil, "", false
	}
	rows := table.Year(year)
	if len(rows) == 0 {
		return nil, "", false
	}
	return rows, Title(city, year), true
}

func (v *View) Catalog() *repository.Catalog {
	return v.catalog
}
