// Package grid renders the year calendar: one row per month, days drawn
// as connected pills so consecutive completed days read as a streak.
package grid

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"habitgrid/internal/calendar"
)

// Layer is one habit's selection painted onto the grid.
type Layer struct {
	Color    string
	Selected func(date string) bool
}

// Model is the year grid. Layers carries one habit in single view and all
// habits in the aggregate view, where overlapping days blend their colors.
type Model struct {
	Year        int
	WeekStart   calendar.WeekStart
	Layers      []Layer
	CursorMonth int // 0-based
	CursorDay   int // 1-based
	ShowCursor  bool
	Today       string
}

func New(year int, weekStart calendar.WeekStart) Model {
	now := time.Now()
	return Model{
		Year:        year,
		WeekStart:   weekStart,
		CursorMonth: int(now.Month()) - 1,
		CursorDay:   now.Day(),
		ShowCursor:  true,
		Today:       now.Format("2006-01-02"),
	}
}

func (m Model) View() string {
	rows := []string{m.header()}
	for month := 0; month < 12; month++ {
		rows = append(rows, m.viewMonth(month))
	}
	return strings.Join(rows, "\n")
}

var (
	monthLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(4)
	dayLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// header repeats the weekday initials across the columns. Column i holds
// weekday i mod 7 relative to the week start, so one header lines up with
// every month row.
func (m Model) header() string {
	names := calendar.DayNamesMonday
	if m.WeekStart == calendar.WeekStartSunday {
		names = calendar.DayNamesSunday
	}

	var b strings.Builder
	b.WriteString(monthLabelStyle.Render(""))
	for i := 0; i < calendar.MaxGridCells; i++ {
		b.WriteString(dayLabelStyle.Render(names[i%7][:1] + " "))
	}
	return b.String()
}

func (m Model) viewMonth(month int) string {
	cells := calendar.MonthGrid(month, m.Year, m.WeekStart)

	var b strings.Builder
	b.WriteString(monthLabelStyle.Render(calendar.MonthNamesShort[month]))

	for i := 0; i < calendar.MaxGridCells; i++ {
		if i >= len(cells) || cells[i] == 0 {
			b.WriteString("  ")
			continue
		}
		day := cells[i]
		date := calendar.FormatISODate(m.Year, month+1, day)

		color, count := m.blend(date)
		selected := func(d int) bool {
			_, n := m.blend(calendar.FormatISODate(m.Year, month+1, d))
			return n > 0
		}

		cursor := m.ShowCursor && month == m.CursorMonth && day == m.CursorDay
		b.WriteString(m.renderCell(cells, i, date, color, count > 0, selected, cursor))
	}
	return b.String()
}

// blend returns the combined color of every layer marking the date and how
// many layers mark it. Overlaps mix in Lab space so two habits on the same
// day get a readable midpoint instead of channel clipping.
func (m Model) blend(date string) (string, int) {
	var mixed colorful.Color
	count := 0
	for _, layer := range m.Layers {
		if layer.Selected == nil || !layer.Selected(date) {
			continue
		}
		c, err := colorful.Hex(layer.Color)
		if err != nil {
			c = colorful.Color{R: 1, G: 0.42, B: 0.29}
		}
		if count == 0 {
			mixed = c
		} else {
			mixed = mixed.BlendLab(c, 0.5)
		}
		count++
	}
	if count == 0 {
		return "", 0
	}
	return mixed.Clamped().Hex(), count
}

func (m Model) renderCell(cells []int, i int, date, color string, on bool, selected func(int) bool, cursor bool) string {
	var text string
	if on {
		switch calendar.RunShape(cells, i, selected) {
		case calendar.ShapeLeftEnd:
			text = "▐█"
		case calendar.ShapeRightEnd:
			text = "█▌"
		case calendar.ShapeInterior:
			text = "██"
		default:
			text = "▐▌"
		}
	} else if date == m.Today {
		text = "◦ "
	} else {
		text = "· "
	}

	style := lipgloss.NewStyle()
	if on {
		style = style.Foreground(lipgloss.Color(color))
	} else {
		style = style.Foreground(lipgloss.Color("238"))
	}
	if cursor {
		style = style.Reverse(true)
	}
	return style.Render(text)
}
