package table

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	columnGap      = "  "
	floatPrecision = 6
	missingCell    = "NaN"
)

// String renders the table in its default text form: a blank index header,
// one integer-indexed line per row and right-aligned columns.
func (t *Table) String() string {
	var b strings.Builder
	_ = t.Render(&b)
	return b.String()
}

// Render writes the default text form of the table to w. No trailing
// newline is written.
func (t *Table) Render(w io.Writer) error {
	if len(t.rows) == 0 {
		_, err := fmt.Fprintf(w, "Empty table\nColumns: [%s]\nIndex: []", strings.Join(t.columns, ", "))
		return err
	}

	index := make([]string, len(t.rows))
	indexWidth := 0
	for i := range t.rows {
		index[i] = strconv.Itoa(i)
		indexWidth = max(indexWidth, len(index[i]))
	}

	cells := make([][]string, len(t.rows))
	widths := make([]int, len(t.columns))
	for j, c := range t.columns {
		widths[j] = utf8.RuneCountInString(c)
	}
	for i, r := range t.rows {
		cells[i] = make([]string, len(t.columns))
		for j, c := range t.columns {
			v, ok := r[c]
			if !ok {
				cells[i][j] = missingCell
			} else {
				cells[i][j] = FormatCell(v)
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(cells[i][j]))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indexWidth))
	for j, c := range t.columns {
		b.WriteString(columnGap)
		b.WriteString(padLeft(c, widths[j]))
	}
	for i := range t.rows {
		b.WriteByte('\n')
		b.WriteString(index[i] + strings.Repeat(" ", indexWidth-len(index[i])))
		for j := range t.columns {
			b.WriteString(columnGap)
			b.WriteString(padLeft(cells[i][j], widths[j]))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatCell renders one cell value. Floats use six decimals.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return missingCell
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return missingCell
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', floatPrecision, 64)
}

// padLeft right-aligns s in width characters.
func padLeft(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
