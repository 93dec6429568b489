package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary    = "Summary"
	SheetAlerts     = "Alerts"
	SheetItems      = "Items"
	SheetMismatches = "Mismatches"

	defaultSheet = "Sheet1"
)

// workbook wraps an excelize file with the header/row helpers every export uses.
type workbook struct {
	f *excelize.File
}

func newWorkbook(sheets ...string) (*workbook, error) {
	f := excelize.NewFile()
	for i, name := range sheets {
		idx, err := f.NewSheet(name)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	return &workbook{f: f}, nil
}

func (w *workbook) header(sheet string, cols ...string) error {
	if err := w.row(sheet, 1, toAny(cols)...); err != nil {
		return err
	}
	style, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *workbook) row(sheet string, rowNum int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	defer func() { _ = w.f.Close() }()
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *workbook) close() {
	_ = w.f.Close()
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// optional renders a nullable number as an empty cell when absent.
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
