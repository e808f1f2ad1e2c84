package query

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxColumnWidth caps every rendered column, header included.
const MaxColumnWidth = 30

// NoRows is rendered for an empty result set.
const NoRows = "query returned no rows"

// Format renders columns and rows as a text table: a header joined by
// " | ", a dashed rule, one line per row, and a footer. The footer warns
// that more rows may exist when len(rows) reached maxRows.
func Format(columns []string, rows [][]any, maxRows int) string {
	if len(rows) == 0 {
		return NoRows
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i := range columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			s := Cell(v)
			cells[r][i] = s
			widths[i] = max(widths[i], utf8.RuneCountInString(s))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], MaxColumnWidth)
	}

	var b strings.Builder
	header := joinRow(columns, widths)
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", utf8.RuneCountInString(header)))
	for _, row := range cells {
		b.WriteByte('\n')
		b.WriteString(joinRow(row, widths))
	}

	b.WriteString("\n\n")
	if maxRows > 0 && len(rows) >= maxRows {
		fmt.Fprintf(&b, "showing first %d rows (more may exist)", maxRows)
	} else if len(rows) == 1 {
		b.WriteString("1 row")
	} else {
		fmt.Fprintf(&b, "%d rows", len(rows))
	}
	return b.String()
}

// Cell renders one value: NULL for nil, byte slices as text, times in
// RFC 3339.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func joinRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var s string
		if i < len(cells) {
			s = cells[i]
		}
		parts[i] = pad(clip(s, w), w)
	}
	return strings.Join(parts, " | ")
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func pad(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
