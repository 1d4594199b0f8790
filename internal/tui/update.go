package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"habitgrid/internal/calendar"
	"habitgrid/internal/constants"
	"habitgrid/internal/export"
	"habitgrid/internal/models"
)

var errEmptyTitle = errors.New("title cannot be empty")

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case changeMsg:
		return m.handleChange(msg)
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateRenameHabit:
		return m.updateForm(msg)
	case constants.StateColorPicker:
		return m.updateColorPicker(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateConfirmImport:
		return m.updateConfirmImport(msg)
	}
	return m.updateCalendar(msg)
}

// handleChange re-arms the watcher whose feed fired. When the habit list
// itself changed the per-habit feeds are rebuilt, since the active habit
// or the aggregate membership may no longer match.
func (m Model) handleChange(msg changeMsg) (tea.Model, tea.Cmd) {
	if msg.source != "habits" {
		switch msg.source {
		case "dates":
			if m.dateFeed != nil {
				return m, waitForChange(m.dateFeed.Changed(), "dates")
			}
		case "multi":
			if m.multiFeed != nil {
				return m, waitForChange(m.multiFeed.Changed(), "multi")
			}
		}
		return m, nil
	}

	if err := m.openActiveFeed(); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	}
	if err := m.openMultiFeed(); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	}
	return m, tea.Batch(m.watchFeeds()...)
}

func (m Model) updateCalendar(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.statusMsg = ""

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(keyMsg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(keyMsg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(keyMsg, m.keys.Up):
		m.moveMonth(-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.moveMonth(1)
	case key.Matches(keyMsg, m.keys.Today):
		now := time.Now()
		m.year = now.Year()
		m.grid.Year = m.year
		m.grid.CursorMonth = int(now.Month()) - 1
		m.grid.CursorDay = now.Day()

	case key.Matches(keyMsg, m.keys.Toggle):
		if m.allView || m.dateFeed == nil {
			break
		}
		if _, err := m.dateFeed.ToggleDate(m.cursorDate()); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		}

	case key.Matches(keyMsg, m.keys.FillMonth):
		if m.allView || m.dateFeed == nil {
			break
		}
		if err := m.dateFeed.InitializeMonth(m.year, m.grid.CursorMonth); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		}

	case key.Matches(keyMsg, m.keys.NextHabit):
		return m.cycleHabit(1)
	case key.Matches(keyMsg, m.keys.PrevHabit):
		return m.cycleHabit(-1)

	case key.Matches(keyMsg, m.keys.AllHabits):
		m.allView = !m.allView

	case key.Matches(keyMsg, m.keys.Stats):
		m.showStats = !m.showStats

	case key.Matches(keyMsg, m.keys.Add):
		if m.habitFeed.Len() >= constants.MaxHabits {
			m.statusMsg = fmt.Sprintf("Habit limit of %d reached", constants.MaxHabits)
			break
		}
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm, "New habit title")
		m.previousState = m.state
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case key.Matches(keyMsg, m.keys.Rename):
		_, title, _, ok := m.activeHabit()
		if !ok {
			break
		}
		m.habitForm = &HabitFormModel{Title: title}
		m.form = newHabitForm(m.habitForm, "Rename habit")
		m.previousState = m.state
		m.state = constants.StateRenameHabit
		return m, m.form.Init()

	case key.Matches(keyMsg, m.keys.Color):
		_, _, color, ok := m.activeHabit()
		if !ok {
			break
		}
		m.colorIdx = 0
		for i, c := range constants.HabitColors {
			if c == color {
				m.colorIdx = i
				break
			}
		}
		m.previousState = m.state
		m.state = constants.StateColorPicker

	case key.Matches(keyMsg, m.keys.Delete):
		if m.habitFeed.Len() <= constants.MinHabits {
			m.statusMsg = "Cannot delete the last habit"
			break
		}
		if _, _, _, ok := m.activeHabit(); !ok {
			break
		}
		m.previousState = m.state
		m.state = constants.StateConfirmDelete

	case key.Matches(keyMsg, m.keys.Export):
		m.exportToClipboard()

	case key.Matches(keyMsg, m.keys.Import):
		raw, err := export.ReadClipboard()
		if err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			break
		}
		doc, err := export.Parse(raw)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			break
		}
		m.pendingImport = &doc
		m.previousState = m.state
		m.state = constants.StateConfirmImport
	}

	return m, nil
}

// moveCursor shifts the day cursor, wrapping across month boundaries.
func (m *Model) moveCursor(delta int) {
	day := m.grid.CursorDay + delta
	month := m.grid.CursorMonth
	if day < 1 {
		month--
		if month < 0 {
			month = 11
		}
		day = calendar.DaysInMonth(month, m.year)
	} else if day > calendar.DaysInMonth(month, m.year) {
		month++
		if month > 11 {
			month = 0
		}
		day = 1
	}
	m.grid.CursorMonth = month
	m.grid.CursorDay = day
}

// moveMonth shifts the month cursor, clamping the day to the target
// month's length.
func (m *Model) moveMonth(delta int) {
	month := m.grid.CursorMonth + delta
	if month < 0 {
		month = 11
	} else if month > 11 {
		month = 0
	}
	if max := calendar.DaysInMonth(month, m.year); m.grid.CursorDay > max {
		m.grid.CursorDay = max
	}
	m.grid.CursorMonth = month
}

func (m Model) cycleHabit(delta int) (tea.Model, tea.Cmd) {
	n := m.habitFeed.Len()
	if n == 0 {
		return m, nil
	}
	m.activeIdx = (m.activeIdx + delta + n) % n
	if err := m.openActiveFeed(); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return m, nil
	}
	if m.dateFeed != nil {
		return m, waitForChange(m.dateFeed.Changed(), "dates")
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var err error
		if m.state == constants.StateAddHabit {
			_, err = m.habitFeed.Create(m.habitForm.Title, "")
			if err == nil {
				m.activeIdx = m.habitFeed.Len() - 1
				if ferr := m.openActiveFeed(); ferr == nil && m.dateFeed != nil {
					m.state = m.previousState
					return m, waitForChange(m.dateFeed.Changed(), "dates")
				}
			}
		} else {
			id, _, _, ok := m.activeHabit()
			if ok {
				_, err = m.habitFeed.Update(id, models.HabitUpdate{Title: &m.habitForm.Title})
			}
		}
		if err != nil {
			m.formError = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.formError = ""
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) updateColorPicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case keyMsg.Type == tea.KeyEsc, key.Matches(keyMsg, m.keys.Quit):
		m.state = m.previousState

	case key.Matches(keyMsg, m.keys.Left), key.Matches(keyMsg, m.keys.Up):
		m.colorIdx = (m.colorIdx + len(constants.HabitColors) - 1) % len(constants.HabitColors)

	case key.Matches(keyMsg, m.keys.Right), key.Matches(keyMsg, m.keys.Down):
		m.colorIdx = (m.colorIdx + 1) % len(constants.HabitColors)

	case keyMsg.Type == tea.KeyEnter:
		id, _, _, ok := m.activeHabit()
		if ok {
			color := constants.HabitColors[m.colorIdx]
			if _, err := m.habitFeed.Update(id, models.HabitUpdate{Color: &color}); err != nil {
				m.statusMsg = fmt.Sprintf("Error: %v", err)
			}
		}
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		id, title, _, ok := m.activeHabit()
		if ok {
			if err := m.habitFeed.Delete(id); err != nil {
				m.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				m.statusMsg = fmt.Sprintf("Deleted %s", title)
				if m.activeIdx > 0 {
					m.activeIdx--
				}
				if err := m.openActiveFeed(); err == nil && m.dateFeed != nil {
					m.state = m.previousState
					return m, waitForChange(m.dateFeed.Changed(), "dates")
				}
			}
		}
		m.state = m.previousState
	case "n", "N", "esc", "q":
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) updateConfirmImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.runImport()
		m.pendingImport = nil
		m.state = m.previousState
		return m, tea.Batch(m.watchFeeds()...)
	case "n", "N", "esc", "q":
		m.pendingImport = nil
		m.state = m.previousState
	}
	return m, nil
}

func (m *Model) runImport() {
	if m.pendingImport == nil {
		return
	}
	imported := 0
	for _, entry := range m.pendingImport.Habits {
		habit, err := m.habitFeed.Create(entry.Title, "")
		if err != nil {
			m.statusMsg = fmt.Sprintf("Import stopped: %v", err)
			return
		}
		if len(entry.SelectedDates) > 0 {
			if _, err := m.store.InsertDates(habit.ID, entry.SelectedDates); err != nil {
				m.statusMsg = fmt.Sprintf("Import stopped: %v", err)
				return
			}
		}
		imported++
	}
	m.statusMsg = fmt.Sprintf("Imported %d habits", imported)
	if err := m.openMultiFeed(); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	}
}

func (m *Model) exportToClipboard() {
	habits := m.habitFeed.Habits()
	if len(habits) == 0 {
		m.statusMsg = "Nothing to export"
		return
	}
	if m.multiFeed == nil {
		m.statusMsg = "Export unavailable"
		return
	}

	activeID := ""
	if id, _, _, ok := m.activeHabit(); ok {
		activeID = id
	}
	doc := export.Build(habits, activeID, m.multiFeed.DateStringsFor, time.Now())
	payload, err := export.Marshal(doc)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	if err := export.Copy(payload); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	m.statusMsg = fmt.Sprintf("Copied %d habits to the clipboard", len(habits))
}
