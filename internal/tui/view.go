package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"habitgrid/internal/constants"
	"habitgrid/internal/tui/components/grid"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAddHabit, constants.StateRenameHabit:
		content = m.viewForm()
	case constants.StateColorPicker:
		content = m.viewColorPicker()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateConfirmImport:
		content = m.viewConfirmImport()
	default:
		content = m.viewCalendar()
	}

	parts := []string{m.viewHeader(), content}
	if m.showStats {
		parts = append(parts, m.viewStats())
	}
	if m.statusMsg != "" {
		parts = append(parts, warningStyle.Render(m.statusMsg))
	}
	parts = append(parts, m.help.View(m))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewHeader() string {
	title := headerStyle.Render(fmt.Sprintf("habitgrid %d", m.year))
	if _, ok := m.provider.CurrentUser(); !ok {
		return lipgloss.JoinHorizontal(lipgloss.Top, title,
			warningStyle.Render("  not signed in, run 'habitgrid login'"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", m.viewTabs())
}

func (m Model) viewTabs() string {
	habits := m.habitFeed.Habits()
	if len(habits) == 0 {
		return inactiveTabStyle.Render("no habits yet, press 'a'")
	}

	var tabs []string
	for i, h := range habits {
		style := inactiveTabStyle
		if !m.allView && i == m.activeIdx {
			style = activeTabStyle.Foreground(lipgloss.Color(h.Color))
		}
		tabs = append(tabs, style.Render(h.Title))
	}

	allStyle := inactiveTabStyle
	if m.allView {
		allStyle = activeTabStyle
	}
	tabs = append(tabs, allStyle.Render("All"))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewCalendar() string {
	g := m.grid
	g.Year = m.year
	g.Layers = m.layers()
	g.ShowCursor = !m.allView
	return g.View()
}

// layers builds the grid paint for the current view: the active habit
// alone, or every habit stacked in the aggregate view.
func (m Model) layers() []grid.Layer {
	if m.allView {
		if m.multiFeed == nil {
			return nil
		}
		var layers []grid.Layer
		for _, h := range m.habitFeed.Habits() {
			id := h.ID
			layers = append(layers, grid.Layer{
				Color:    h.Color,
				Selected: func(date string) bool { return m.multiFeed.IsSelected(id, date) },
			})
		}
		return layers
	}

	_, _, color, ok := m.activeHabit()
	if !ok || m.dateFeed == nil {
		return nil
	}
	return []grid.Layer{{Color: color, Selected: m.dateFeed.IsSelected}}
}

func (m Model) viewStats() string {
	habits := m.habitFeed.Habits()
	if len(habits) == 0 || m.multiFeed == nil {
		return ""
	}

	var rows []string
	for i, h := range habits {
		if !m.allView && i != m.activeIdx {
			continue
		}
		s := m.calc.ForHabit(h.ID, m.multiFeed.DateStringsFor(h.ID), m.year)
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render(h.Title)
		rows = append(rows, statStyle.Render(fmt.Sprintf(
			"%s  %.1f%% of days, %d day streak, %d total",
			label, s.CompletionRate, s.CurrentStreak, s.TotalCompletedDays)))
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewForm() string {
	if m.formError != "" {
		return lipgloss.JoinVertical(lipgloss.Left,
			dangerStyle.Render(m.formError), m.form.View())
	}
	return m.form.View()
}

func (m Model) viewColorPicker() string {
	var swatches []string
	for i, c := range constants.HabitColors {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("██")
		if i == m.colorIdx {
			swatch = lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color(c)).Render("██")
		}
		swatches = append(swatches, swatch)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"Pick a color (enter to apply, esc to cancel):",
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, swatches...),
	)
}

func (m Model) viewConfirmDelete() string {
	_, title, _, _ := m.activeHabit()
	return lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render(fmt.Sprintf("Delete %q and all its recorded dates?", title)),
		"",
		"[y] Yes",
		"[n] No",
	)
}

func (m Model) viewConfirmImport() string {
	count := 0
	if m.pendingImport != nil {
		count = len(m.pendingImport.Habits)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		warningStyle.Render(fmt.Sprintf("Import %d habits from the clipboard alongside your current %d?",
			count, m.habitFeed.Len())),
		"",
		"[y] Yes",
		"[n] No",
	)
}
