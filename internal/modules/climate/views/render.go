package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ghcn-dashboard/internal/modules/climate/selection"
	"ghcn-dashboard/internal/modules/climate/types"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"num": func(n int) string { return printer.Sprintf("%d", n) },
	"temp": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return printer.Sprintf("%.1f °C", *v)
	},
}

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Summary is the small table of figures printed under the chart.
type Summary struct {
	Days       int
	Warmest    *float64
	Coldest    *float64
	RecordDays int
}

type ViewData struct {
	Empty     bool
	Cities    []types.City
	City      string
	StationID string
	Year      int
	Years     []int
	Title     string
	Chart     template.HTML
	Notice    string
	Summary   Summary
}

// NewViewData turns a selection snapshot into the view model, rendering the
// chart inline. rejected is the pair this request asked for and could not get,
// if any.
func NewViewData(snap selection.Snapshot, rejected *selection.State) (*ViewData, error) {
	if snap.Empty() {
		return &ViewData{Empty: true}, nil
	}

	var svg bytes.Buffer
	if err := RenderChart(&svg, snap.Title, snap.Rows); err != nil {
		return nil, err
	}

	data := &ViewData{
		Cities:  snap.Cities,
		City:    snap.State.City,
		Year:    snap.State.Year,
		Years:   snap.Years(),
		Title:   snap.Title,
		Chart:   template.HTML(svg.String()),
		Summary: summarize(snap.Rows),
	}
	for _, c := range snap.Cities {
		if c.Name == snap.State.City {
			data.StationID = c.StationID
			break
		}
	}
	if rejected != nil {
		data.Notice = notice(snap, *rejected)
	}
	return data, nil
}

func notice(snap selection.Snapshot, rejected selection.State) string {
	still := fmt.Sprintf("Still showing %s in %d.", snap.State.City, snap.State.Year)
	known := false
	for _, c := range snap.Cities {
		if c.Name == rejected.City {
			known = true
			break
		}
	}
	if !known || rejected.Year == 0 {
		return fmt.Sprintf("No data for %s. %s", rejected.City, still)
	}
	return fmt.Sprintf("No data for %s in %d. %s", rejected.City, rejected.Year, still)
}

func summarize(rows []types.DailyRecord) Summary {
	s := Summary{Days: len(rows)}
	for _, r := range rows {
		if r.TMax != nil && (s.Warmest == nil || *r.TMax > *s.Warmest) {
			v := *r.TMax
			s.Warmest = &v
		}
		if r.TMin != nil && (s.Coldest == nil || *r.TMin < *s.Coldest) {
			v := *r.TMin
			s.Coldest = &v
		}
		if (r.TMax != nil && r.RecordMax != nil && *r.TMax >= *r.RecordMax) ||
			(r.TMin != nil && r.RecordMin != nil && *r.TMin <= *r.RecordMin) {
			s.RecordDays++
		}
	}
	return s
}

func RenderDashboard(w io.Writer, data *ViewData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderViewPartial executes only the view partial into w.
// Use for HTMX fragment refresh.
func RenderViewPartial(w io.Writer, data *ViewData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/view.html", data)
}
