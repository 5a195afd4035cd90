package spreadsheet

import "strings"

// Row is one data row keyed by normalized header. Values are raw cell text;
// typing happens downstream.
type Row struct {
	Line  int
	cells map[string]string
}

// NewRow builds a Row, normalizing the column names the same way headers
// are normalized.
func NewRow(line int, cells map[string]string) Row {
	normalized := make(map[string]string, len(cells))
	for k, v := range cells {
		key := NormalizeHeader(k)
		if _, exists := normalized[key]; exists || key == "" {
			continue
		}
		normalized[key] = v
	}
	return Row{Line: line, cells: normalized}
}

// Get returns the trimmed value of a column, matched case-insensitively.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.cells[NormalizeHeader(column)])
}

// First returns the first non-empty value among the aliases, in order.
func (r Row) First(aliases ...string) string {
	for _, alias := range aliases {
		if v := r.Get(alias); v != "" {
			return v
		}
	}
	return ""
}

func (r Row) IsBlank() bool {
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader lowercases and trims a header cell and drops the " *"
// marker templates put on required columns.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSpace(strings.TrimSuffix(h, "*"))
	return h
}
