package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/claimlens/internal/model"
)

// ExportRow is one line of a batch workbook.
type ExportRow struct {
	Ref    string
	Report *model.Report
	Err    error
}

const exportSheet = "Claims"

var exportHeaders = []string{
	"Source",
	"Policy Number",
	"Claimant Name",
	"Date of Loss",
	"Amount Claimed",
	"Valid",
	"Score",
	"Issues",
	"Claim Description",
	"Error",
}

// ExportXLSX renders rows as an XLSX workbook and returns its bytes.
func ExportXLSX(rows []ExportRow, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	index, err := f.GetSheetIndex(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}

		write(1, r.Ref)
		if r.Err != nil || r.Report == nil {
			if r.Err != nil {
				write(10, r.Err.Error())
			}
			continue
		}

		rec := r.Report.Record
		write(2, model.Deref(rec.PolicyNumber))
		write(3, model.Deref(rec.ClaimantName))
		write(4, model.Deref(rec.DateOfLoss))
		write(5, model.Deref(rec.AmountClaimed))
		write(6, r.Report.Validation.Valid)
		write(7, r.Report.Validation.Score)
		write(8, joinIssues(r.Report.Validation.Issues))
		write(9, truncate(model.Deref(rec.ClaimDescription), 300))
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 40) // source
	_ = f.SetColWidth(exportSheet, "B", "C", 22)
	_ = f.SetColWidth(exportSheet, "D", "E", 16)
	_ = f.SetColWidth(exportSheet, "F", "G", 8)
	_ = f.SetColWidth(exportSheet, "H", "H", 48)
	_ = f.SetColWidth(exportSheet, "I", "I", 60)
	_ = f.SetColWidth(exportSheet, "J", "J", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func joinIssues(issues []model.IssueKind) string {
	s := ""
	for i, issue := range issues {
		if i > 0 {
			s += ", "
		}
		s += string(issue)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
