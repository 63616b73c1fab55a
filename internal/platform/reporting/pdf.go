package reporting

import (
	"fmt"
	"hash/fnv"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/dcportal/dcportal/internal/domain/form"
)

// Category header fills. The palette index is a hash of the category label,
// so a category keeps its color across exports and across forms.
var palette = [][3]int{
	{191, 219, 254}, // blue
	{187, 247, 208}, // green
	{254, 215, 170}, // orange
	{221, 214, 254}, // violet
	{254, 202, 202}, // red
	{253, 230, 138}, // amber
	{165, 243, 252}, // cyan
	{251, 207, 232}, // pink
}

func categoryFill(label string) (int, int, int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	c := palette[h.Sum32()%uint32(len(palette))]
	return c[0], c[1], c[2]
}

const (
	headerRowH = 7.0
	dataRowH   = 6.0
	margin     = 10.0
)

// WritePDF renders a report as a landscape A4 document with the grouped
// three-row header.
func WritePDF(w io.Writer, rep *Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(rep.Form.Name, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, rep.Form.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s  (%s - %s)", rep.Schedule.Name,
		rep.Schedule.StartDate.Format("2006-01-02"), rep.Schedule.EndDate.Format("2006-01-02")),
		"", 1, "C", false, 0, "")
	pdf.Ln(2)

	st := rep.Structure
	leaves := st.LeafColumns()
	if len(leaves) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "This form has no fields.", "", 1, "C", false, 0, "")
		return pdf.Output(w)
	}

	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*margin) / float64(len(leaves))

	drawHeader(pdf, st, colW)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(255, 255, 255)
	for _, row := range rep.Rows {
		if pdf.GetY()+dataRowH > 210-margin {
			pdf.AddPage()
			drawHeader(pdf, st, colW)
			pdf.SetFont("Helvetica", "", 9)
		}
		for _, cell := range row {
			pdf.CellFormat(colW, dataRowH, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(dataRowH)
	}
	return pdf.Output(w)
}

// drawHeader paints the three header rows. Fixed columns (primary and
// standalone fields) span all three rows; category cells span their leaf
// count and carry their palette fill.
func drawHeader(pdf *fpdf.Fpdf, st form.TableStructure, colW float64) {
	pdf.SetFont("Helvetica", "B", 9)
	x0 := margin
	y0 := pdf.GetY()

	x := x0
	pdf.SetFillColor(229, 231, 235)
	if st.Primary != nil {
		pdf.SetXY(x, y0)
		pdf.CellFormat(colW, 3*headerRowH, st.Primary.Label, "1", 0, "CM", true, 0, "")
		x += colW
	}
	for _, c := range st.Standalone {
		pdf.SetXY(x, y0)
		pdf.CellFormat(colW, 3*headerRowH, c.Label, "1", 0, "CM", true, 0, "")
		x += colW
	}

	for _, cat := range st.Categories {
		span := float64(cat.ColSpan()) * colW
		r, g, b := categoryFill(cat.Label)
		pdf.SetFillColor(r, g, b)

		pdf.SetXY(x, y0)
		pdf.CellFormat(span, headerRowH, cat.Label, "1", 0, "CM", true, 0, "")

		// middle row: blanks over the category's own columns, merged
		// cells over each sub-category
		mx := x
		for range cat.Columns {
			pdf.SetXY(mx, y0+headerRowH)
			pdf.CellFormat(colW, headerRowH, "", "1", 0, "CM", true, 0, "")
			mx += colW
		}
		for _, sc := range cat.SubCategories {
			scW := float64(len(sc.Columns)) * colW
			pdf.SetXY(mx, y0+headerRowH)
			pdf.CellFormat(scW, headerRowH, sc.Label, "1", 0, "CM", true, 0, "")
			mx += scW
		}

		// leaf row
		lx := x
		for _, col := range cat.Columns {
			pdf.SetXY(lx, y0+2*headerRowH)
			pdf.CellFormat(colW, headerRowH, col.Label, "1", 0, "CM", true, 0, "")
			lx += colW
		}
		for _, sc := range cat.SubCategories {
			for _, col := range sc.Columns {
				pdf.SetXY(lx, y0+2*headerRowH)
				pdf.CellFormat(colW, headerRowH, col.Label, "1", 0, "CM", true, 0, "")
				lx += colW
			}
		}
		x += span
	}

	pdf.SetXY(x0, y0+3*headerRowH)
}
