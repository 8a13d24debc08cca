package present

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quarterly_financials/pkg/core/utils"
)

// FormatValue renders a cell as a plain decimal; nil renders as "".
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV writes the table in row-major order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the table to path, replacing any existing file.
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderMarkdown renders a GFM table.
func (t *Table) RenderMarkdown() (string, error) {
	var b strings.Builder
	records := t.Records()

	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(c, "|", "\\|"))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(records[0])
	b.WriteString("|")
	for range records[0] {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, rec := range records[1:] {
		writeRow(rec)
	}

	out := b.String()
	if got := utils.CountMarkdownTableRows(out); got != len(t.Rows) {
		return "", fmt.Errorf("markdown table has %d rows, expected %d", got, len(t.Rows))
	}
	return out, nil
}
