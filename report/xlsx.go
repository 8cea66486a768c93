package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/warp/household-payroll/payroll"
	"github.com/xuri/excelize/v2"
)

const totalsSheet = "Totais"

// WriteXLSX writes the monthly report as a workbook: a totals sheet with one
// row per worker, then one detail sheet per worker.
func WriteXLSX(w io.Writer, s *payroll.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", totalsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Diarista", "Faxinas pesadas", "Faxinas leves", "Presenças", "Lavanderia", "Total", "Transporte pago", "Vencimento"}
	rows := [][]any{header}
	for _, ws := range s.Workers {
		e := ws.Earnings
		rows = append(rows, []any{
			ws.Worker.Name, e.HeavyDays, e.LightDays,
			e.AttendanceTotal.Float64(), e.LaundryTotal.Float64(), e.GrandTotal.Float64(),
			e.TransportPaidTotal.Float64(), s.PaymentDueDate.String(),
		})
	}
	t := s.Totals
	rows = append(rows, []any{
		"Total geral", t.HeavyDays, t.LightDays,
		t.AttendanceTotal.Float64(), t.LaundryTotal.Float64(), t.GrandTotal.Float64(),
		t.TransportPaidTotal.Float64(), "",
	})
	if err := writeSheet(f, totalsSheet, rows, 4, 5, 6, 7); err != nil {
		return err
	}

	used := map[string]bool{totalsSheet: true}
	for _, ws := range s.Workers {
		name := sheetName(ws.Worker.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}
		if err := writeSheet(f, name, workerRows(ws), 4); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func workerRows(ws payroll.WorkerSummary) [][]any {
	rows := [][]any{{"Data", "Item", "Detalhe", "Valor"}}
	for _, a := range ws.Attendance {
		value := 0.0
		if a.Present {
			value = ws.Prices.DayPrice(a.DayType).Float64()
		}
		rows = append(rows, []any{a.Date.String(), serviceLabel(a.DayType), "presente: " + yesNo(a.Present), value})
	}
	for _, l := range ws.Laundry {
		var parts []string
		if l.Ironed {
			parts = append(parts, "passou")
		}
		if l.Washed {
			parts = append(parts, "lavou")
		}
		rows = append(rows, []any{
			fmt.Sprintf("semana %d", l.WeekNumber), "Lavanderia", strings.Join(parts, ", "),
			payroll.WeekServicesTotal(l, ws.Prices).Float64(),
		})
		if due := payroll.TransportDue(l); due.IsPositive() {
			rows = append(rows, []any{fmt.Sprintf("semana %d", l.WeekNumber), "Transporte", "pago em " + paidAt(l.PaidAt), due.Float64()})
		}
	}
	for _, n := range ws.Notes {
		kind := string(n.NoteType)
		if n.IsWarning {
			kind += " (advertência)"
		}
		rows = append(rows, []any{n.Date.String(), "Observação", kind + ": " + n.Content, ""})
	}
	rows = append(rows,
		[]any{"", "Presenças", "", ws.Earnings.AttendanceTotal.Float64()},
		[]any{"", "Lavanderia", "", ws.Earnings.LaundryTotal.Float64()},
		[]any{"", "Total", "", ws.Earnings.GrandTotal.Float64()},
		[]any{"", "Transporte pago", "", ws.Earnings.TransportPaidTotal.Float64()},
	)
	return rows
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, moneyCols ...int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("set row %d on %s: %w", i+1, sheet, err)
		}
	}
	return applyFormatting(f, sheet, len(rows[0]), moneyCols)
}

// applyFormatting: bold header, filter on row 1, money columns at two decimals,
// widths from content length.
func applyFormatting(f *excelize.File, sheet string, cols int, moneyCols []int) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", last+"1", bold)
	}
	_ = f.AutoFilter(sheet, "A1:"+last+"1", nil)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	money := "0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &money})
	if err != nil {
		return err
	}
	for c := 1; c <= cols; c++ {
		col, _ := excelize.ColumnNumberToName(c)
		width := 10.0
		for _, r := range rows {
			if c-1 < len(r) {
				if w := float64(len([]rune(r[c-1]))) * 1.1; w > width {
					width = w
				}
			}
		}
		if width > 60 {
			width = 60
		}
		_ = f.SetColWidth(sheet, col, col, width)
	}
	if len(rows) > 1 {
		for _, c := range moneyCols {
			col, _ := excelize.ColumnNumberToName(c)
			_ = f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, len(rows)), moneyStyle)
		}
	}
	return nil
}

// sheetName trims to Excel's 31-character limit, strips forbidden characters,
// and de-duplicates.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Diarista"
	}
	base := []rune(clean)
	if len(base) > 28 {
		base = base[:28]
	}
	candidate := string(base)
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s %d", string(base), i)
	}
	used[candidate] = true
	return candidate
}
