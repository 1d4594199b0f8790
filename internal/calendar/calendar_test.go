package calendar

import "testing"

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		month int
		year  int
		want  int
	}{
		{"january", 0, 2026, 31},
		{"february non-leap", 1, 2026, 28},
		{"february leap", 1, 2028, 29},
		{"february century non-leap", 1, 2100, 28},
		{"february 400-year leap", 1, 2000, 29},
		{"april", 3, 2026, 30},
		{"december", 11, 2026, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.month, tt.year); got != tt.want {
				t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.month, tt.year, got, tt.want)
			}
		})
	}
}

func TestFirstWeekdayOffset(t *testing.T) {
	// 2026-01-01 is a Thursday, 2026-02-01 is a Sunday, 2026-03-01 is a Sunday
	tests := []struct {
		name      string
		month     int
		year      int
		weekStart WeekStart
		want      int
	}{
		{"jan 2026 monday-first", 0, 2026, WeekStartMonday, 3},
		{"jan 2026 sunday-first", 0, 2026, WeekStartSunday, 4},
		{"feb 2026 monday-first sunday maps to 6", 1, 2026, WeekStartMonday, 6},
		{"feb 2026 sunday-first sunday stays 0", 1, 2026, WeekStartSunday, 0},
		{"jun 2026 monday-first", 5, 2026, WeekStartMonday, 0}, // 2026-06-01 is a Monday
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstWeekdayOffset(tt.month, tt.year, tt.weekStart); got != tt.want {
				t.Errorf("FirstWeekdayOffset(%d, %d, %v) = %d, want %d",
					tt.month, tt.year, tt.weekStart, got, tt.want)
			}
		})
	}
}

func TestFirstWeekdayOffsetMondayMapping(t *testing.T) {
	// Monday-first must satisfy: native Sunday(0) -> 6, native d -> d-1.
	for year := 2024; year <= 2030; year++ {
		for month := 0; month < 12; month++ {
			sunday := FirstWeekdayOffset(month, year, WeekStartSunday)
			monday := FirstWeekdayOffset(month, year, WeekStartMonday)

			want := sunday - 1
			if sunday == 0 {
				want = 6
			}
			if monday != want {
				t.Errorf("month %d/%d: monday-first offset = %d, want %d (native %d)",
					month, year, monday, want, sunday)
			}
		}
	}
}

func TestMonthGrid(t *testing.T) {
	for year := 2025; year <= 2028; year++ {
		for month := 0; month < 12; month++ {
			for _, ws := range []WeekStart{WeekStartMonday, WeekStartSunday} {
				cells := MonthGrid(month, year, ws)
				offset := FirstWeekdayOffset(month, year, ws)
				days := DaysInMonth(month, year)

				if len(cells) != offset+days {
					t.Fatalf("MonthGrid(%d, %d): len = %d, want %d", month, year, len(cells), offset+days)
				}
				for i := 0; i < offset; i++ {
					if cells[i] != 0 {
						t.Errorf("MonthGrid(%d, %d): cell %d = %d, want blank", month, year, i, cells[i])
					}
				}
				for i := 0; i < days; i++ {
					if cells[offset+i] != i+1 {
						t.Errorf("MonthGrid(%d, %d): cell %d = %d, want %d", month, year, offset+i, cells[offset+i], i+1)
					}
				}
			}
		}
	}
}

func TestFormatISODate(t *testing.T) {
	tests := []struct {
		year, month1, day int
		want              string
	}{
		{2026, 1, 1, "2026-01-01"},
		{2026, 12, 31, "2026-12-31"},
		{2026, 9, 5, "2026-09-05"},
	}

	for _, tt := range tests {
		if got := FormatISODate(tt.year, tt.month1, tt.day); got != tt.want {
			t.Errorf("FormatISODate(%d, %d, %d) = %q, want %q", tt.year, tt.month1, tt.day, got, tt.want)
		}
	}
}

func TestMonthDates(t *testing.T) {
	dates := MonthDates(1, 2028) // February of a leap year
	if len(dates) != 29 {
		t.Fatalf("MonthDates: len = %d, want 29", len(dates))
	}
	if dates[0] != "2028-02-01" {
		t.Errorf("first date = %q, want 2028-02-01", dates[0])
	}
	if dates[28] != "2028-02-29" {
		t.Errorf("last date = %q, want 2028-02-29", dates[28])
	}
}

func TestRunShape(t *testing.T) {
	// Offset of two blanks, then days 1..5.
	cells := []int{0, 0, 1, 2, 3, 4, 5}

	t.Run("run of three", func(t *testing.T) {
		selected := func(day int) bool { return day >= 2 && day <= 4 }

		if got := RunShape(cells, 3, selected); got != ShapeLeftEnd {
			t.Errorf("day 2 shape = %v, want ShapeLeftEnd", got)
		}
		if got := RunShape(cells, 4, selected); got != ShapeInterior {
			t.Errorf("day 3 shape = %v, want ShapeInterior", got)
		}
		if got := RunShape(cells, 5, selected); got != ShapeRightEnd {
			t.Errorf("day 4 shape = %v, want ShapeRightEnd", got)
		}
	})

	t.Run("isolated day", func(t *testing.T) {
		selected := func(day int) bool { return day == 3 }
		if got := RunShape(cells, 4, selected); got != ShapeIsolated {
			t.Errorf("shape = %v, want ShapeIsolated", got)
		}
	})

	t.Run("blank neighbor counts as unselected", func(t *testing.T) {
		selected := func(day int) bool { return true }
		// Day 1 follows a blank cell, so it is a left end even though the
		// predicate would select any day number.
		if got := RunShape(cells, 2, selected); got != ShapeLeftEnd {
			t.Errorf("day 1 shape = %v, want ShapeLeftEnd", got)
		}
	})

	t.Run("grid edges treat missing neighbors as unselected", func(t *testing.T) {
		selected := func(day int) bool { return true }
		if got := RunShape(cells, len(cells)-1, selected); got != ShapeRightEnd {
			t.Errorf("last cell shape = %v, want ShapeRightEnd", got)
		}
	})

	t.Run("blank and unselected cells", func(t *testing.T) {
		selected := func(day int) bool { return day == 2 }
		if got := RunShape(cells, 0, selected); got != ShapeNone {
			t.Errorf("blank cell shape = %v, want ShapeNone", got)
		}
		if got := RunShape(cells, 4, selected); got != ShapeNone {
			t.Errorf("unselected day shape = %v, want ShapeNone", got)
		}
	})

	t.Run("out of range index", func(t *testing.T) {
		selected := func(day int) bool { return true }
		if got := RunShape(cells, -1, selected); got != ShapeNone {
			t.Errorf("shape = %v, want ShapeNone", got)
		}
		if got := RunShape(cells, len(cells), selected); got != ShapeNone {
			t.Errorf("shape = %v, want ShapeNone", got)
		}
	})
}
