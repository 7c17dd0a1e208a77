// Package formatter renders human-readable markdown reports.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator rows valid markdown ("---").
const minColumnWidth = 3

// Table renders a markdown table whose columns are padded to the widest cell.
// Widths are measured in terminal display columns so sensor names with wide
// characters still line up.
func Table(header []string, rows [][]string) []string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return nil
	}

	colWidths := make([]int, colCount)

	for _, row := range append([][]string{header}, rows...) {
		for i := 0; i < len(row); i++ {
			width := runewidth.StringWidth(escapeCell(row[i]))
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	result := make([]string, 0, len(rows)+2)
	result = append(result, formatRow(header, colWidths))
	result = append(result, separatorRow(colWidths))

	for _, row := range rows {
		result = append(result, formatRow(row, colWidths))
	}

	return result
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = escapeCell(row[j])
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		padding := width - runewidth.StringWidth(content)
		if padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func separatorRow(colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, width := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	return sb.String()
}

// escapeCell keeps pipes inside a cell from splitting the row.
func escapeCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}
