package reporting

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders a report as CSV with the same three header rows the HTML
// table shows. encoding/csv handles quoting, so labels with commas or
// newlines survive a round trip through spreadsheet tools.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	top, mid, leaf := headerRows(rep.Structure)
	for _, header := range [][]string{top, mid, leaf} {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rep.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
