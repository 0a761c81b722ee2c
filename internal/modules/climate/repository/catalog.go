package repository

import (
	"sort"

	"ghcn-dashboard/internal/modules/climate/types"
)

// Catalog is the read-only set of derived tables built at startup. Only
// stations with data are kept. It is safe for concurrent readers because it
// is never written after NewCatalog returns.
type Catalog struct {
	tables map[string]types.Table // by station id
	cities []types.City           // sorted by name
	byName map[string]string      // city name -> station id
}

// NewCatalog indexes the given tables, dropping empty ones.
func NewCatalog(tables []types.Table) *Catalog {
	c := &Catalog{
		tables: make(map[string]types.Table, len(tables)),
		byName: make(map[string]string, len(tables)),
	}
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		c.tables[t.Station.ID] = t
		c.byName[t.Station.Name] = t.Station.ID
		c.cities = append(c.cities, types.City{
			Name:      t.Station.Name,
			StationID: t.Station.ID,
			Years:     t.Years(),
		})
	}
	sort.Slice(c.cities, func(i, j int) bool { return c.cities[i].Name < c.cities[j].Name })
	return c
}

// Cities returns the usable cities, alphabetical by name.
func (c *Catalog) Cities() []types.City {
	out := make([]types.City, len(c.cities))
	copy(out, c.cities)
	return out
}

func (c *Catalog) Len() int {
	return len(c.cities)
}

// City looks a usable city up by display name.
func (c *Catalog) City(name string) (types.City, bool) {
	for _, city := range c.cities {
		if city.Name == name {
			return city, true
		}
	}
	return types.City{}, false
}

// TableByStation returns the derived table for a station id.
func (c *Catalog) TableByStation(stationID string) (types.Table, bool) {
	t, ok := c.tables[stationID]
	return t, ok
}

// TableByCity returns the derived table for a city display name.
func (c *Catalog) TableByCity(name string) (types.Table, bool) {
	id, ok := c.byName[name]
	if !ok {
		return types.Table{}, false
	}
	return c.TableByStation(id)
}

// HasYear reports whether the city has rows for year.
func (c *Catalog) HasYear(name string, year int) bool {
	city, ok := c.City(name)
	if !ok {
		return false
	}
	i := sort.SearchInts(city.Years, year)
	return i < len(city.Years) && city.Years[i] == year
}

// LatestYear returns the most recent year for the city.
func (c *Catalog) LatestYear(name string) (int, bool) {
	city, ok := c.City(name)
	if !ok || len(city.Years) == 0 {
		return 0, false
	}
	return city.Years[len(city.Years)-1], true
}
