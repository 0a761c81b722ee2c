package types

type Station struct {
	ID   string `json:"stationId"`
	Name string `json:"name"`
}

// DailyRecord is one (year, day of year) row of a derived station table.
// Temperatures are degrees Celsius; nil means no value.
type DailyRecord struct {
	DayOfYear int      `json:"dayOfYear"`
	Year      int      `json:"year"`
	TMax      *float64 `json:"tmax"`
	TMin      *float64 `json:"tmin"`
	AvgMax    *float64 `json:"avgMax"`
	AvgMin    *float64 `json:"avgMin"`
	RecordMax *float64 `json:"recordMax"`
	RecordMin *float64 `json:"recordMin"`
}

// Table is the derived table for one station, sorted by year then day of year.
type Table struct {
	Station Station
	Records []DailyRecord
}

func (t Table) Empty() bool {
	return len(t.Records) == 0
}

// Years returns the distinct years present, ascending.
func (t Table) Years() []int {
	var years []int
	for _, r := range t.Records {
		if n := len(years); n == 0 || years[n-1] != r.Year {
			years = append(years, r.Year)
		}
	}
	return years
}

// Year returns the rows for one year, in day-of-year order.
func (t Table) Year(year int) []DailyRecord {
	var out []DailyRecord
	for _, r := range t.Records {
		if r.Year == year {
			out = append(out, r)
		} else if r.Year > year {
			break
		}
	}
	return out
}

// City is a usable station as offered to the user.
type City struct {
	Name      string `json:"name"`
	StationID string `json:"stationId"`
	Years     []int  `json:"years"`
}
