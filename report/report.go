/*
Package report renders a payroll.Summary into printable documents.

FORMATS:
  - HTML (Render): self-contained page, one section per worker
  - XLSX (WriteXLSX): one sheet per worker plus a totals sheet

Every amount shown comes from the Summary as computed by the payroll
package; nothing is recomputed here beyond per-row unit prices.
*/
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
)

//go:embed templates/*.html
var templateFS embed.FS

var monthly = template.Must(template.New("monthly.html").Funcs(template.FuncMap{
	"serviceLabel": serviceLabel,
	"yesNo":        yesNo,
	"weekServices": func(w payroll.LaundryWeek, p payroll.Prices) generic.Money { return payroll.WeekServicesTotal(w, p) },
	"transportDue": payroll.TransportDue,
	"paidAt":       paidAt,
}).ParseFS(templateFS, "templates/monthly.html"))

type page struct {
	Title       string
	Summary     *payroll.Summary
	GeneratedAt string
}

// Render writes the monthly HTML report.
func Render(w io.Writer, s *payroll.Summary) error {
	p := page{
		Title:       Title(s),
		Summary:     s,
		GeneratedAt: s.GeneratedAt.Format("2006-01-02 15:04"),
	}
	if err := monthly.Execute(w, p); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Title names the report after the month and, when it was asked for one
// worker, that worker. A household report keeps the plain title even when
// only one worker is active.
func Title(s *payroll.Summary) string {
	title := fmt.Sprintf("Relatório mensal %02d/%d", s.Month, s.Year)
	if s.WorkerID == "" {
		return title
	}
	for _, ws := range s.Workers {
		if ws.Worker.ID == s.WorkerID {
			return title + " - " + ws.Worker.Name
		}
	}
	return title
}

func serviceLabel(t payroll.DayType) string {
	switch t {
	case payroll.HeavyCleaning:
		return "Faxina pesada"
	case payroll.LightCleaning:
		return "Faxina leve"
	}
	return string(t)
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func paidAt(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return generic.DateOf(*t).String()
}
