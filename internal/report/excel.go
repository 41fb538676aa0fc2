// Package report exports expansion run summaries for back-office review.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"washbay/internal/recurrence"
)

// ExpansionReport renders one expansion run as an XLSX workbook with a sheet
// of created reservations and a sheet of skipped candidates.
type ExpansionReport struct {
	file       *excelize.File
	currentRow int
	sheet      string
}

// NewExpansionReport creates an empty report.
func NewExpansionReport() *ExpansionReport {
	return &ExpansionReport{file: excelize.NewFile()}
}

// Fill populates the workbook from a run.
func (r *ExpansionReport) Fill(run *recurrence.Run) error {
	if err := r.addSheet("Created"); err != nil {
		return err
	}
	if err := r.writeRow([]any{"Date", "Start", "End", "Duration (min)", "Total price"}); err != nil {
		return err
	}
	for _, res := range run.Created {
		row := []any{
			res.Date.Format("2006-01-02"),
			res.Interval.Start.Format("15:04"),
			res.Interval.End.Format("15:04"),
			res.TotalDuration,
			res.TotalPrice,
		}
		if err := r.writeRow(row); err != nil {
			return err
		}
	}

	if err := r.addSheet("Skipped"); err != nil {
		return err
	}
	if err := r.writeRow([]any{"Date", "Reason"}); err != nil {
		return err
	}
	for _, s := range run.Skipped {
		if err := r.writeRow([]any{s.Date.Format("2006-01-02"), s.Reason}); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo renders the workbook to w.
func (r *ExpansionReport) WriteTo(w io.Writer) (int64, error) {
	return r.file.WriteTo(w)
}

// SaveAs writes the workbook to a file path.
func (r *ExpansionReport) SaveAs(path string) error {
	return r.file.SaveAs(path)
}

func (r *ExpansionReport) addSheet(name string) error {
	// Excel caps sheet names at 31 chars
	if len(name) > 31 {
		name = name[:31]
	}

	if r.sheet == "" {
		r.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := r.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	r.sheet = name
	r.currentRow = 1
	return nil
}

func (r *ExpansionReport) writeRow(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, r.currentRow)
	if err != nil {
		return fmt.Errorf("row coordinates: %w", err)
	}
	if err := r.file.SetSheetRow(r.sheet, cell, &values); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	r.currentRow++
	return nil
}
