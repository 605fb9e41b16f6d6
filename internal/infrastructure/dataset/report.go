package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReportRow is one line of a batch allocation report: the single best
// opportunity for an applicant with its score breakdown.
type ReportRow struct {
	ApplicantID   string
	OpportunityID string
	Role          string
	Organization  string
	BaseScore     float64
	Bonus         float64
	FinalScore    float64
	Aspirational  bool
	Rural         bool
}

var reportHeader = []string{
	"applicant_id", "opportunity_id", "role", "organization",
	"base_score", "fairness_bonus", "final_score", "is_aspirational", "is_rural",
}

const reportSheet = "Allocations"

func (r ReportRow) cells() []string {
	return []string{
		r.ApplicantID,
		r.OpportunityID,
		r.Role,
		r.Organization,
		formatScore(r.BaseScore),
		formatScore(r.Bonus),
		formatScore(r.FinalScore),
		strconv.FormatBool(r.Aspirational),
		strconv.FormatBool(r.Rural),
	}
}

// WriteReport writes rows to path, choosing CSV or XLSX by extension.
func WriteReport(path string, rows []ReportRow) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := WriteReportCSV(f, rows); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case ".xlsx":
		return writeReportXLSX(path, rows)
	default:
		return fmt.Errorf("unsupported report format: %s", path)
	}
}

func WriteReportCSV(w io.Writer, rows []ReportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.cells()); err != nil {
			return fmt.Errorf("write report row %s: %w", row.ApplicantID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func writeReportXLSX(path string, rows []ReportRow) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, 1, reportHeader); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{
			row.ApplicantID, row.OpportunityID, row.Role, row.Organization,
			row.BaseScore, row.Bonus, row.FinalScore, row.Aspirational, row.Rural,
		}
		if err := setRowValues(f, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return setRowValues(f, rowNum, values)
}

func setRowValues(f *excelize.File, rowNum int, values []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(reportSheet, axis, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
