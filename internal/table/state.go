// Package table derives the currently visible slice of a parsed dataset
// from filter, sort, column-visibility and pagination state.
//
// State is a value: every transition returns a new State and never touches
// the dataset, so view computation stays a pure function that any frontend
// can call. This mirrors how the rest of the system treats the Dataset -
// immutable after parse, replaced wholesale on a new upload.
package table

import "strings"

// PageSizes is the fixed set of allowed page sizes.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when a new dataset is installed.
const DefaultPageSize = 25

// DateFilter is an exact-match filter on one designated date-valued column.
type DateFilter struct {
	Column string
	Value  string
	Active bool
}

// State holds everything mutable about one table view. The zero value of
// the maps means "no constraint"; NewState applies pagination defaults.
type State struct {
	Filters  map[string]string // column -> text query, blank imposes nothing
	Date     DateFilter
	Sort     SortState
	Hidden   map[string]bool // columns currently not shown
	Page     int
	PageSize int
}

// NewState returns the default state for a freshly installed dataset.
func NewState() State {
	return State{Page: 1, PageSize: DefaultPageSize}
}

// WithFilter sets the text filter for one column and resets to page 1.
// A blank query clears the column's filter.
func (s State) WithFilter(column, text string) State {
	next := s
	next.Filters = cloneFilters(s.Filters)
	if strings.TrimSpace(text) == "" {
		delete(next.Filters, column)
	} else {
		next.Filters[column] = text
	}
	next.Page = 1
	return next
}

// WithDateFilter sets the exact-match date filter and resets to page 1.
func (s State) WithDateFilter(column, value string) State {
	next := s
	next.Date = DateFilter{Column: column, Value: strings.TrimSpace(value), Active: true}
	if next.Date.Value == "" {
		next.Date = DateFilter{}
	}
	next.Page = 1
	return next
}

// WithoutDateFilter clears the date filter and resets to page 1.
func (s State) WithoutDateFilter() State {
	next := s
	next.Date = DateFilter{}
	next.Page = 1
	return next
}

// WithSortClick advances the sort machine for a header click and resets
// to page 1.
func (s State) WithSortClick(column string) State {
	next := s
	next.Sort = s.Sort.Click(column)
	next.Page = 1
	return next
}

// WithColumnVisible shows or hides one column. Pagination is untouched:
// hiding a column never changes which rows are on the page.
func (s State) WithColumnVisible(column string, visible bool) State {
	next := s
	next.Hidden = cloneHidden(s.Hidden)
	if visible {
		delete(next.Hidden, column)
	} else {
		next.Hidden[column] = true
	}
	return next
}

// WithAllColumnsVisible clears the hidden set.
func (s State) WithAllColumnsVisible() State {
	next := s
	next.Hidden = nil
	return next
}

// WithPage requests a page; Compute clamps it to the valid range.
func (s State) WithPage(page int) State {
	next := s
	if page < 1 {
		page = 1
	}
	next.Page = page
	return next
}

// WithPageSize switches to one of the allowed page sizes and resets to
// page 1. An unknown size is ignored.
func (s State) WithPageSize(size int) State {
	for _, allowed := range PageSizes {
		if size == allowed {
			next := s
			next.PageSize = size
			next.Page = 1
			return next
		}
	}
	return s
}

func cloneFilters(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneHidden(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
