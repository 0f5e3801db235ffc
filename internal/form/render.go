package form

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageLeft   = 15.0
	labelWidth = 70.0
	valueWidth = 105.0
	rowHeight  = 6.0
)

// render draws a Document with the single gofpdf backend.  Core fonts
// only, so rendering needs no font files on disk.
func render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageLeft, 12, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	for _, b := range doc.Blocks {
		renderBlock(pdf, b)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Title, err)
	}
	return buf.Bytes(), nil
}

func renderBlock(pdf *gofpdf.Fpdf, b Block) {
	if b.Heading != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 7, b.Heading, "1", 1, "L", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range b.Fields {
		label := f.Label
		if label == "" {
			label = "Date"
		}
		pdf.CellFormat(labelWidth, rowHeight, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, f.Value, "1", 1, "L", false, 0, "")
	}
	if len(b.Checks) > 0 {
		renderChecks(pdf, b.Checks)
	}
	if b.Table != nil {
		renderTable(pdf, b.Table)
	}
	pdf.Ln(2)
}

// renderChecks draws checkbox rows.  Tri-state rows get Yes / No / N-A
// mark columns so an "na" selection is visibly distinct from an
// unanswered row or a No.
func renderChecks(pdf *gofpdf.Fpdf, checks []CheckValue) {
	tri := false
	for _, c := range checks {
		if c.Tri {
			tri = true
			break
		}
	}
	if tri {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(130, 5, "", "1", 0, "L", false, 0, "")
		for _, h := range []string{"Yes", "No", "N/A"} {
			pdf.CellFormat(15, 5, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, c := range checks {
		if c.Tri {
			pdf.CellFormat(130, rowHeight, c.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(15, rowHeight, mark(c.State == TriYes), "1", 0, "C", false, 0, "")
			pdf.CellFormat(15, rowHeight, mark(c.State == TriNo), "1", 0, "C", false, 0, "")
			pdf.CellFormat(15, rowHeight, mark(c.State == TriNA), "1", 1, "C", false, 0, "")
			continue
		}
		pdf.CellFormat(10, rowHeight, mark(c.Checked), "1", 0, "C", false, 0, "")
		pdf.CellFormat(165, rowHeight, c.Label, "1", 1, "L", false, 0, "")
	}
}

func renderTable(pdf *gofpdf.Fpdf, t *Table) {
	if len(t.Columns) == 0 {
		return
	}
	w := 175.0 / float64(len(t.Columns))
	pdf.SetFont("Helvetica", "B", 8)
	for _, col := range t.Columns {
		pdf.CellFormat(w, 6, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	if len(t.Rows) == 0 {
		// A few empty rows so the printed form can be completed by hand.
		for i := 0; i < 3; i++ {
			for range t.Columns {
				pdf.CellFormat(w, 6, "", "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		return
	}
	for _, row := range t.Rows {
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(w, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func mark(on bool) string {
	if on {
		return "X"
	}
	return ""
}
