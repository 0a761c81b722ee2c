package ghcn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMalformedFeed is returned when a station file cannot be read as a GHCN CSV.
var ErrMalformedFeed = errors.New("malformed feed")

const (
	colID      = "ID"
	colDate    = "DATE"
	colElement = "ELEMENT"
	colValue   = "DATA_VALUE"
	colMFlag   = "M_FLAG"
	colQFlag   = "Q_FLAG"
	colSFlag   = "S_FLAG"
	colObsTime = "OBS_TIME"
)

var requiredColumns = []string{colDate, colElement, colValue}

var dateLayouts = []string{"20060102", "2006-01-02"}

// ParseCSV reads a by_station CSV file. When elements are given, rows for other
// elements are dropped before rows are materialised. stationID is used for rows
// whose ID column is missing or blank.
//
// A body with no data rows yields no observations and no error. Rows with a
// blank DATA_VALUE are skipped.
func ParseCSV(r io.Reader, stationID string, elements ...string) ([]Observation, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	if !hasDataRows(body) {
		return nil, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(body),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, df.Err)
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedFeed, name)
		}
	}

	if len(elements) > 0 {
		df = df.Filter(dataframe.F{Colname: colElement, Comparator: series.In, Comparando: elements})
		if df.Err != nil {
			return nil, fmt.Errorf("%w: filter elements: %v", ErrMalformedFeed, df.Err)
		}
	}
	if df.Nrow() == 0 {
		return nil, nil
	}

	dates := df.Col(colDate).Records()
	kinds := df.Col(colElement).Records()
	values := df.Col(colValue).Records()
	column := func(name string) []string {
		if !present[name] {
			return nil
		}
		return df.Col(name).Records()
	}
	ids := column(colID)
	mflags, qflags, sflags, obsTimes := column(colMFlag), column(colQFlag), column(colSFlag), column(colObsTime)

	out := make([]Observation, 0, df.Nrow())
	for i := range dates {
		raw := strings.TrimSpace(at(values, i))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid %s %q", ErrMalformedFeed, i+1, colValue, raw)
		}
		date, err := parseDate(dates[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedFeed, i+1, err)
		}
		obs := Observation{
			StationID: stationID,
			Date:      date,
			Element:   kinds[i],
			Value:     value,
			MFlag:     at(mflags, i),
			QFlag:     at(qflags, i),
			SFlag:     at(sflags, i),
			ObsTime:   at(obsTimes, i),
		}
		if id := at(ids, i); id != "" {
			obs.StationID = id
		}
		out = append(out, obs)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid DATE %q", s)
}

// at returns col[i], treating gota's missing-value marker as blank.
func at(col []string, i int) string {
	if i >= len(col) || col[i] == "NaN" {
		return ""
	}
	return col[i]
}

func hasDataRows(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false
	}
	return bytes.IndexByte(body, '\n') >= 0
}
