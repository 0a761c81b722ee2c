package views

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ghcn-dashboard/internal/modules/climate/types"
)

const (
	ChartWidth  = 1200
	ChartHeight = 600

	firstDay = 1
	lastDay  = 366

	barWidth = 0.8
)

var (
	recordColor = drawing.ColorFromHex("B0C4DE").WithAlpha(51)
	normalColor = drawing.ColorFromHex("6495ED").WithAlpha(102)
	actualColor = drawing.ColorFromHex("4682B4").WithAlpha(204)
)

// bandSeries shades the area between two bounds for every day of year. Days
// where either bound is missing leave a gap.
type bandSeries struct {
	name   string
	color  drawing.Color
	points []bandPoint
}

type bandPoint struct {
	day       float64
	low, high float64
	hasBounds bool
}

func (s bandSeries) GetName() string { return s.name }

func (s bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (s bandSeries) GetStyle() chart.Style {
	return chart.Style{FillColor: s.color, StrokeColor: s.color, StrokeWidth: 8}
}

func (s bandSeries) Validate() error {
	if s.name == "" {
		return errors.New("band series needs a name")
	}
	return nil
}

func (s bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	for _, run := range s.runs() {
		run = widen(run)
		r.SetFillColor(s.color)
		r.SetStrokeWidth(0)
		first := run[0]
		r.MoveTo(px(canvasBox, xrange, first.day), py(canvasBox, yrange, first.high))
		for _, p := range run[1:] {
			r.LineTo(px(canvasBox, xrange, p.day), py(canvasBox, yrange, p.high))
		}
		for i := len(run) - 1; i >= 0; i-- {
			r.LineTo(px(canvasBox, xrange, run[i].day), py(canvasBox, yrange, run[i].low))
		}
		r.Close()
		r.Fill()
	}
}

// runs splits the points into stretches of consecutive days that have both bounds.
func (s bandSeries) runs() [][]bandPoint {
	var out [][]bandPoint
	var cur []bandPoint
	for _, p := range s.points {
		if !p.hasBounds || (len(cur) > 0 && p.day != cur[len(cur)-1].day+1) {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
		}
		if p.hasBounds {
			cur = append(cur, p)
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// widen turns a single-day run into a half-day either side so it still covers
// some area.
func widen(run []bandPoint) []bandPoint {
	if len(run) != 1 {
		return run
	}
	p := run[0]
	left, right := p, p
	left.day -= 0.5
	right.day += 0.5
	return []bandPoint{left, right}
}

// barSeries draws one bar per day from TMIN to TMAX.
type barSeries struct {
	name  string
	color drawing.Color
	bars  []bandPoint
}

func (s barSeries) GetName() string { return s.name }

func (s barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (s barSeries) GetStyle() chart.Style {
	return chart.Style{FillColor: s.color, StrokeColor: s.color, StrokeWidth: 8}
}

func (s barSeries) Validate() error {
	if s.name == "" {
		return errors.New("bar series needs a name")
	}
	return nil
}

func (s barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	half := barWidth / 2
	for _, b := range s.bars {
		if !b.hasBounds {
			continue
		}
		left := px(canvasBox, xrange, b.day-half)
		right := px(canvasBox, xrange, b.day+half)
		if right <= left {
			right = left + 1
		}
		top := py(canvasBox, yrange, b.high)
		bottom := py(canvasBox, yrange, b.low)
		if bottom <= top {
			bottom = top + 1
		}

		r.SetFillColor(s.color)
		r.SetStrokeWidth(0)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, bottom)
		r.LineTo(left, bottom)
		r.Close()
		r.Fill()
	}
}

func px(box chart.Box, xrange chart.Range, v float64) int {
	return box.Left + xrange.Translate(v)
}

func py(box chart.Box, yrange chart.Range, v float64) int {
	return box.Bottom - yrange.Translate(v)
}

func point(day int, low, high *float64) bandPoint {
	p := bandPoint{day: float64(day)}
	if low != nil && high != nil {
		p.low, p.high, p.hasBounds = *low, *high, true
	}
	return p
}

// NewChart builds the three-layer chart for one (city, year): record band,
// normals band, then the observed daily range.
func NewChart(title string, rows []types.DailyRecord) chart.Chart {
	record := bandSeries{name: "Record", color: recordColor}
	normal := bandSeries{name: "Average", color: normalColor}
	actual := barSeries{name: "Actual", color: actualColor}
	for _, row := range rows {
		record.points = append(record.points, point(row.DayOfYear, row.RecordMin, row.RecordMax))
		normal.points = append(normal.points, point(row.DayOfYear, row.AvgMin, row.AvgMax))
		actual.bars = append(actual.bars, point(row.DayOfYear, row.TMin, row.TMax))
	}

	low, high := temperatureRange(rows)

	graph := chart.Chart{
		Title:  title,
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Day of the Year",
			Range: &chart.ContinuousRange{Min: firstDay, Max: lastDay},
			Ticks: dayTicks(),
		},
		YAxis: chart.YAxis{
			Name:           "Temperature (°C)",
			Range:          &chart.ContinuousRange{Min: low, Max: high},
			ValueFormatter: degreeFormatter,
		},
		Series: []chart.Series{record, normal, actual},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// RenderChart writes the chart as SVG.
func RenderChart(w io.Writer, title string, rows []types.DailyRecord) error {
	graph := NewChart(title, rows)
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func dayTicks() []chart.Tick {
	ticks := []chart.Tick{{Value: firstDay, Label: "1"}}
	for d := 50; d < lastDay; d += 50 {
		ticks = append(ticks, chart.Tick{Value: float64(d), Label: fmt.Sprintf("%d", d)})
	}
	return append(ticks, chart.Tick{Value: lastDay, Label: fmt.Sprintf("%d", lastDay)})
}

func degreeFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// temperatureRange is the padded y extent over every value the chart draws.
func temperatureRange(rows []types.DailyRecord) (float64, float64) {
	low, high := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		for _, v := range []*float64{r.TMax, r.TMin, r.AvgMax, r.AvgMin, r.RecordMax, r.RecordMin} {
			if v == nil {
				continue
			}
			low = math.Min(low, *v)
			high = math.Max(high, *v)
		}
	}
	if math.IsInf(low, 1) {
		return -10, 40
	}
	return math.Floor(low) - 2, math.Ceil(high) + 2
}
