// Package calendar holds the pure date math behind the year grid: month
// lengths, weekday offsets, padded month sequences and the run-shape
// classification used to draw contiguous selections as pills.
package calendar

import (
	"fmt"
	"time"
)

// WeekStart selects the first column of the rendered week.
type WeekStart int

const (
	// WeekStartMonday lays out columns Mon..Sun (offset 0 = Monday).
	WeekStartMonday WeekStart = iota
	// WeekStartSunday lays out columns Sun..Sat (offset 0 = Sunday).
	WeekStartSunday
)

// MaxGridCells is the widest a month row can get: a 6-cell offset before a
// 31-day month. Renderers pad rows to this width; MonthGrid itself does not.
const MaxGridCells = 37

// Shape classifies how a selected day relates to its horizontal neighbors
// within the same month row.
type Shape int

const (
	// ShapeNone means the cell is blank or not selected.
	ShapeNone Shape = iota
	// ShapeIsolated is a selected day with no selected neighbor.
	ShapeIsolated
	// ShapeLeftEnd starts a run of selected days.
	ShapeLeftEnd
	// ShapeRightEnd finishes a run of selected days.
	ShapeRightEnd
	// ShapeInterior sits inside a run of selected days.
	ShapeInterior
)

// MonthNamesShort has one three-letter name per 0-based month index.
var MonthNamesShort = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// DayNamesMonday are column headers for the Monday-first layout.
var DayNamesMonday = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayNamesSunday are column headers for the Sunday-first layout.
var DayNamesSunday = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DaysInMonth returns the number of days in the given 0-based month,
// accounting for leap years. Day 0 of the following month is its last day.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the 0-6 column offset of the first day of the
// given 0-based month. For Monday-first weeks the native Sunday (0) maps to
// 6 and every other weekday d maps to d-1; Sunday-first keeps native values.
func FirstWeekdayOffset(month, year int, weekStart WeekStart) int {
	d := int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
	if weekStart == WeekStartMonday {
		if d == 0 {
			return 6
		}
		return d - 1
	}
	return d
}

// MonthGrid returns the month's day numbers prefixed by blank cells (0) so
// that day 1 lands in its weekday column. Length is offset + days in month;
// there is no trailing padding, consumers pad to MaxGridCells when rendering.
func MonthGrid(month, year int, weekStart WeekStart) []int {
	offset := FirstWeekdayOffset(month, year, weekStart)
	days := DaysInMonth(month, year)

	cells := make([]int, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, 0)
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, day)
	}
	return cells
}

// FormatISODate renders a zero-padded YYYY-MM-DD string. Unlike the 0-based
// month indices used for grid generation, month1 is 1-based here.
func FormatISODate(year, month1, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month1, day)
}

// MonthDates returns every date string of the given 0-based month.
func MonthDates(month, year int) []string {
	days := DaysInMonth(month, year)
	dates := make([]string, 0, days)
	for day := 1; day <= days; day++ {
		dates = append(dates, FormatISODate(year, month+1, day))
	}
	return dates
}

// RunShape classifies cell i of a month grid for pill rendering. Blank
// cells and cells beyond either end of the grid count as unselected, so
// selections never visually join across month boundaries.
func RunShape(cells []int, i int, selected func(day int) bool) Shape {
	if i < 0 || i >= len(cells) {
		return ShapeNone
	}
	day := cells[i]
	if day == 0 || !selected(day) {
		return ShapeNone
	}

	prevSelected := false
	if i > 0 && cells[i-1] != 0 {
		prevSelected = selected(cells[i-1])
	}
	nextSelected := false
	if i < len(cells)-1 && cells[i+1] != 0 {
		nextSelected = selected(cells[i+1])
	}

	switch {
	case !prevSelected && !nextSelected:
		return ShapeIsolated
	case !prevSelected:
		return ShapeLeftEnd
	case !nextSelected:
		return ShapeRightEnd
	default:
		return ShapeInterior
	}
}
