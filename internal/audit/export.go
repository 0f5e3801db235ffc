package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Timestamp", "Username", "User ID", "Action", "Details", "IP Address"}

// ExportCSV writes the entries as delimited text.
func ExportCSV(w io.Writer, entries []ActivityEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{e.Timestamp, e.Username, formatUserID(e.UserID), e.Action, e.Details, e.IPAddress}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX writes the entries as a spreadsheet with a frozen header row.
func ExportXLSX(w io.Writer, entries []ActivityEntry) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Audit Logs"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for row, e := range entries {
		values := []any{e.Timestamp, e.Username, formatUserID(e.UserID), e.Action, e.Details, e.IPAddress}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	return f.Write(w)
}

// ExportPDF writes the entries as a formatted landscape document.
func ExportPDF(w io.Writer, entries []ActivityEntry) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)
	widths := []float64{40, 30, 18, 28, 120, 30}

	header := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Audit Log Export", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 8)
		for i, h := range exportHeader {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()
	for _, e := range entries {
		if pdf.GetY() > 185 {
			header()
		}
		cells := []string{e.Timestamp, e.Username, formatUserID(e.UserID), e.Action, truncate(e.Details, 110), e.IPAddress}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 5, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func formatUserID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n-3])
}
