package feed

import "strings"

func trimCell(cell string) string {
	return strings.TrimSpace(strings.TrimPrefix(cell, "\uFEFF"))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
