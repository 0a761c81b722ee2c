package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghcn-dashboard/internal/modules/climate/types"
)

func TestRenderChart_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "Weather Data for Chicago, IL in 2020", sampleRows()))
	out := buf.String()

	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Weather Data for Chicago, IL in 2020")
	assert.Contains(t, out, "Day of the Year")
	assert.Contains(t, out, "Temperature (°C)")
	for _, label := range []string{"Record", "Average", "Actual"} {
		assert.Contains(t, out, label)
	}
}

func TestRenderChart_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "", nil))
	assert.Contains(t, buf.String(), "<svg")
}

func TestNewChart_Layout(t *testing.T) {
	graph := NewChart("t", sampleRows())

	assert.Equal(t, ChartWidth, graph.Width)
	assert.Equal(t, ChartHeight, graph.Height)
	assert.Equal(t, 1.0, graph.XAxis.Range.GetMin())
	assert.Equal(t, 366.0, graph.XAxis.Range.GetMax())
	require.Len(t, graph.Series, 3)
	assert.Equal(t, "Record", graph.Series[0].GetName())
	assert.Equal(t, "Average", graph.Series[1].GetName())
	assert.Equal(t, "Actual", graph.Series[2].GetName())
	assert.Len(t, graph.Elements, 1)
}

func TestNewChart_Colors(t *testing.T) {
	graph := NewChart("t", nil)

	record := graph.Series[0].GetStyle().FillColor
	assert.Equal(t, uint8(0xB0), record.R)
	assert.Equal(t, uint8(51), record.A)

	normal := graph.Series[1].GetStyle().FillColor
	assert.Equal(t, uint8(0x64), normal.R)
	assert.Equal(t, uint8(102), normal.A)

	actual := graph.Series[2].GetStyle().FillColor
	assert.Equal(t, uint8(0x46), actual.R)
	assert.Equal(t, uint8(204), actual.A)
}

func TestBandSeries_RunsGapOnMissingBounds(t *testing.T) {
	band := bandSeries{name: "Average"}
	for _, r := range []types.DailyRecord{
		{DayOfYear: 1, AvgMin: f(0), AvgMax: f(1)},
		{DayOfYear: 2, AvgMin: f(0), AvgMax: f(1)},
		{DayOfYear: 3, AvgMin: f(0)},
		{DayOfYear: 4, AvgMin: f(0), AvgMax: f(1)},
		{DayOfYear: 6, AvgMin: f(0), AvgMax: f(1)},
	} {
		band.points = append(band.points, point(r.DayOfYear, r.AvgMin, r.AvgMax))
	}

	runs := band.runs()
	require.Len(t, runs, 3)
	assert.Len(t, runs[0], 2)
	assert.Equal(t, 4.0, runs[1][0].day)
	assert.Equal(t, 6.0, runs[2][0].day)
}

func TestWiden(t *testing.T) {
	single := []bandPoint{{day: 6, low: -2, high: 3, hasBounds: true}}

	got := widen(single)
	require.Len(t, got, 2)
	assert.Equal(t, bandPoint{day: 5.5, low: -2, high: 3, hasBounds: true}, got[0])
	assert.Equal(t, bandPoint{day: 6.5, low: -2, high: 3, hasBounds: true}, got[1])
	assert.Equal(t, 6.0, single[0].day, "input is not modified")

	pair := []bandPoint{{day: 1, hasBounds: true}, {day: 2, hasBounds: true}}
	assert.Equal(t, pair, widen(pair))
}

func TestTemperatureRange(t *testing.T) {
	low, high := temperatureRange(sampleRows())
	assert.Equal(t, -30.0, low)
	assert.Equal(t, 19.0, high)

	low, high = temperatureRange(nil)
	assert.Less(t, low, high)
}
