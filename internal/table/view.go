package table

import (
	"sort"
	"strings"
	"time"

	"github.com/csvgrid/csvgrid/internal/csvparse"
)

// View is the answer to "what should currently be visible": the paginated
// slice of filtered, sorted rows plus the counts the controls need.
type View struct {
	Headers       []string       `json:"headers"` // visible columns only
	Rows          []csvparse.Row `json:"rows"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
	TotalPages    int            `json:"totalPages"`
	FilteredCount int            `json:"filteredCount"`
	TotalCount    int            `json:"totalCount"`
}

// dateLayouts are the formats the date filter understands. A cell (or
// filter value) that matches none of them is compared as plain text.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02T15:04:05",
}

// Compute derives the visible view for a dataset and state. It is pure:
// neither argument is mutated, and calling it twice with the same inputs
// returns identical results.
//
// Order of operations: date filter, text filters (AND semantics), sort,
// then the page slice. The requested page is clamped to [1, totalPages]
// rather than erroring when filters shrink the row set.
func Compute(ds *csvparse.Dataset, st State) View {
	v := View{
		Page:     st.Page,
		PageSize: st.PageSize,
	}
	if v.Page < 1 {
		v.Page = 1
	}
	if v.PageSize < 1 {
		v.PageSize = DefaultPageSize
	}
	if ds == nil {
		v.TotalPages = 1
		return v
	}

	v.Headers = visibleHeaders(ds.Headers, st.Hidden)
	v.TotalCount = len(ds.Rows)

	rows := applyDateFilter(ds.Rows, st.Date)
	rows = applyTextFilters(rows, st.Filters)
	v.FilteredCount = len(rows)

	rows = applySort(rows, st.Sort)

	v.TotalPages = (len(rows) + v.PageSize - 1) / v.PageSize
	if v.TotalPages < 1 {
		v.TotalPages = 1
	}
	if v.Page > v.TotalPages {
		v.Page = v.TotalPages
	}

	start := (v.Page - 1) * v.PageSize
	end := start + v.PageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}
	v.Rows = rows[start:end]

	return v
}

func visibleHeaders(headers []string, hidden map[string]bool) []string {
	visible := make([]string, 0, len(headers))
	for _, h := range headers {
		if !hidden[h] {
			visible = append(visible, h)
		}
	}
	return visible
}

// applyTextFilters keeps rows matching every active filter with a
// case-insensitive substring test. Whitespace-only queries impose nothing;
// missing cells compare as "".
func applyTextFilters(rows []csvparse.Row, filters map[string]string) []csvparse.Row {
	active := make(map[string]string, len(filters))
	for col, q := range filters {
		if q = strings.TrimSpace(q); q != "" {
			active[col] = strings.ToLower(q)
		}
	}
	if len(active) == 0 {
		return rows
	}

	out := make([]csvparse.Row, 0, len(rows))
	for _, row := range rows {
		match := true
		for col, q := range active {
			if !strings.Contains(strings.ToLower(row[col]), q) {
				match = false
				break
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out
}

// applyDateFilter keeps rows whose designated column equals the filter
// date. Both sides are normalized through the known layouts; values that
// parse as no known date fall back to trimmed string equality.
func applyDateFilter(rows []csvparse.Row, f DateFilter) []csvparse.Row {
	if !f.Active {
		return rows
	}

	want := normalizeDate(f.Value)
	out := make([]csvparse.Row, 0, len(rows))
	for _, row := range rows {
		if normalizeDate(row[f.Column]) == want {
			out = append(out, row)
		}
	}
	return out
}

func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}

// applySort orders rows case-insensitively on the sort column's string
// values. The sort is stable so equal cells keep original parse order,
// and the input slice is never reordered in place.
func applySort(rows []csvparse.Row, s SortState) []csvparse.Row {
	if !s.Active() {
		return rows
	}

	out := make([]csvparse.Row, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(out[i][s.Column])
		b := strings.ToLower(out[j][s.Column])
		if s.Dir == Descending {
			return a > b
		}
		return a < b
	})

	return out
}
