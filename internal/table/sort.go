package table

// SortDirection is one of the three sort states a column can be in.
type SortDirection int

const (
	// Unsorted means rows stay in original parse order.
	Unsorted SortDirection = iota
	Ascending
	Descending
)

// SortState is an explicit three-state machine over header clicks:
// Unsorted -> Asc(column) -> Desc(column) -> Unsorted. Clicking a different
// column always starts a fresh ascending sort on it.
type SortState struct {
	Column string
	Dir    SortDirection
}

// Click returns the state that follows a header click on column.
func (s SortState) Click(column string) SortState {
	if s.Column != column || s.Dir == Unsorted {
		return SortState{Column: column, Dir: Ascending}
	}
	if s.Dir == Ascending {
		return SortState{Column: column, Dir: Descending}
	}
	return SortState{}
}

// Active reports whether a sort is in effect.
func (s SortState) Active() bool {
	return s.Dir != Unsorted && s.Column != ""
}
