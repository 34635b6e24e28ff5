package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// SortState Machine Tests
// ============================================================================

func TestSortState_ClickCycle(t *testing.T) {
	s := SortState{}

	s = s.Click("Name")
	assert.Equal(t, SortState{Column: "Name", Dir: Ascending}, s)

	s = s.Click("Name")
	assert.Equal(t, SortState{Column: "Name", Dir: Descending}, s)

	s = s.Click("Name")
	assert.Equal(t, SortState{}, s, "third click returns to unsorted")
	assert.False(t, s.Active())
}

func TestSortState_ClickDifferentColumnStartsAscending(t *testing.T) {
	s := SortState{Column: "Name", Dir: Descending}
	s = s.Click("City")
	assert.Equal(t, SortState{Column: "City", Dir: Ascending}, s)
}

// ============================================================================
// State Transition Tests
// ============================================================================

func TestState_WithFilterResetsPage(t *testing.T) {
	s := NewState().WithPage(4)
	s = s.WithFilter("Name", "ali")

	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "ali", s.Filters["Name"])
}

func TestState_BlankFilterClearsColumn(t *testing.T) {
	s := NewState().WithFilter("Name", "ali")
	s = s.WithFilter("Name", "   ")

	_, ok := s.Filters["Name"]
	assert.False(t, ok, "whitespace-only query is equivalent to no filter")
}

func TestState_TransitionsDoNotMutateOriginal(t *testing.T) {
	base := NewState().WithFilter("A", "x")

	derived := base.WithFilter("B", "y").WithColumnVisible("C", false)

	assert.Len(t, base.Filters, 1)
	assert.Empty(t, base.Hidden)
	assert.Len(t, derived.Filters, 2)
	assert.True(t, derived.Hidden["C"])
}

func TestState_DateFilter(t *testing.T) {
	s := NewState().WithPage(3).WithDateFilter("When", "2024-01-15")
	assert.True(t, s.Date.Active)
	assert.Equal(t, 1, s.Page)

	s = s.WithoutDateFilter()
	assert.False(t, s.Date.Active)
}

func TestState_BlankDateFilterIsCleared(t *testing.T) {
	s := NewState().WithDateFilter("When", "  ")
	assert.False(t, s.Date.Active)
}

func TestState_ColumnVisibilityKeepsPage(t *testing.T) {
	s := NewState().WithPage(2)
	s = s.WithColumnVisible("City", false)
	assert.Equal(t, 2, s.Page, "visibility changes never touch pagination")

	s = s.WithColumnVisible("City", true)
	assert.False(t, s.Hidden["City"])

	s = s.WithColumnVisible("A", false).WithColumnVisible("B", false)
	s = s.WithAllColumnsVisible()
	assert.Empty(t, s.Hidden)
}

func TestState_WithPageSize(t *testing.T) {
	s := NewState().WithPage(5)

	s = s.WithPageSize(50)
	assert.Equal(t, 50, s.PageSize)
	assert.Equal(t, 1, s.Page)

	before := s
	s = s.WithPageSize(33)
	assert.Equal(t, before, s, "sizes outside the allowed set are ignored")
}
