package summarizesheet

import (
	"strings"
)

// Summarize renders a header row plus data rows as one line per row of
// "header: value" pairs. ok is false when there is no data beyond the header.
func Summarize(rows [][]string, excluded map[string]struct{}) (text string, ok bool) {
	if len(rows) < 2 {
		return NoDataText, false
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var lines []string
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		var entries []string
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			if _, skip := excluded[headers[i]]; skip {
				continue
			}
			entries = append(entries, headers[i]+": "+value)
		}

		if len(entries) > 0 {
			lines = append(lines, strings.Join(entries, ", "))
		}
	}

	return strings.Join(lines, "\n"), true
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
