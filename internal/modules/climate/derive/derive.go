// Package derive turns raw GHCN observations into per-day climate tables:
// daily highs and lows, 1981-2010 normals and all-time records.
package derive

import (
	"sort"

	"ghcn-dashboard/internal/ghcn"
	"ghcn-dashboard/internal/modules/climate/types"
)

// The climate normal window, inclusive.
const (
	NormalsFirstYear = 1981
	NormalsLastYear  = 2010
)

type dayKey struct {
	year int
	doy  int
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

type pivotCell struct {
	tmax, tmin mean
}

type dayStats struct {
	avgMax, avgMin       mean
	recordMax, recordMin *float64
}

// Table builds the derived table for a station. Observations other than TMAX
// and TMIN are ignored; values are converted from tenths of a degree. The
// result is a pure function of its input and is empty when no temperature
// observations remain.
func Table(station types.Station, obs []ghcn.Observation) types.Table {
	rows := pivot(obs)
	if len(rows) == 0 {
		return types.Table{Station: station}
	}

	stats := make(map[int]*dayStats)
	for _, r := range rows {
		s := stats[r.DayOfYear]
		if s == nil {
			s = &dayStats{}
			stats[r.DayOfYear] = s
		}
		if InNormalsWindow(r.Year) {
			if r.TMax != nil {
				s.avgMax.add(*r.TMax)
			}
			if r.TMin != nil {
				s.avgMin.add(*r.TMin)
			}
		}
		if r.TMax != nil && (s.recordMax == nil || *r.TMax > *s.recordMax) {
			s.recordMax = ptr(*r.TMax)
		}
		if r.TMin != nil && (s.recordMin == nil || *r.TMin < *s.recordMin) {
			s.recordMin = ptr(*r.TMin)
		}
	}

	for i := range rows {
		s := stats[rows[i].DayOfYear]
		rows[i].AvgMax = s.avgMax.value()
		rows[i].AvgMin = s.avgMin.value()
		rows[i].RecordMax = clone(s.recordMax)
		rows[i].RecordMin = clone(s.recordMin)
	}

	return types.Table{Station: station, Records: rows}
}

// InNormalsWindow reports whether year contributes to the climate normals.
func InNormalsWindow(year int) bool {
	return year >= NormalsFirstYear && year <= NormalsLastYear
}

// pivot reshapes observations to one row per (year, day of year), sorted.
// Repeated observations of the same element on the same day are averaged.
func pivot(obs []ghcn.Observation) []types.DailyRecord {
	cells := make(map[dayKey]*pivotCell)
	var keys []dayKey
	for _, o := range obs {
		if !o.IsTemperature() {
			continue
		}
		k := dayKey{year: o.Date.Year(), doy: o.Date.YearDay()}
		c := cells[k]
		if c == nil {
			c = &pivotCell{}
			cells[k] = c
			keys = append(keys, k)
		}
		v := float64(o.Value) / 10.0
		if o.Element == ghcn.ElementTMAX {
			c.tmax.add(v)
		} else {
			c.tmin.add(v)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].doy < keys[j].doy
	})

	rows := make([]types.DailyRecord, 0, len(keys))
	for _, k := range keys {
		c := cells[k]
		rows = append(rows, types.DailyRecord{
			Year:      k.year,
			DayOfYear: k.doy,
			TMax:      c.tmax.value(),
			TMin:      c.tmin.value(),
		})
	}
	return rows
}

func ptr(v float64) *float64 {
	return &v
}

func clone(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return ptr(*p)
}
