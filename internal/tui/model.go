package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"habitgrid/internal/auth"
	"habitgrid/internal/calendar"
	"habitgrid/internal/constants"
	"habitgrid/internal/export"
	"habitgrid/internal/stats"
	"habitgrid/internal/store"
	"habitgrid/internal/sync"
	"habitgrid/internal/tui/components/grid"
)

// HabitFormModel backs the add and rename forms.
type HabitFormModel struct {
	Title string
}

// changeMsg wakes the UI when a feed's collection changed, whether from a
// local write or a remote push event.
type changeMsg struct {
	source string
}

type Model struct {
	store    *store.Client
	provider auth.Provider
	listener sync.Subscriber

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	habitFeed *sync.HabitFeed
	dateFeed  *sync.DateFeed
	multiFeed *sync.MultiDateFeed

	grid grid.Model
	calc *stats.Calculator

	year      int
	activeIdx int
	allView   bool
	showStats bool

	form          *huh.Form
	habitForm     *HabitFormModel
	colorIdx      int
	pendingImport *export.Document

	statusMsg string
	formError string
	quitting  bool
	width     int
	height    int
}

// NewModel builds the TUI over already-started collaborators. listener may
// be nil, in which case the UI still works without live updates.
func NewModel(st *store.Client, provider auth.Provider, listener sync.Subscriber) (Model, error) {
	habitFeed := sync.NewHabitFeed(st, provider)
	if err := habitFeed.Start(listener); err != nil {
		return Model{}, err
	}

	m := Model{
		store:     st,
		provider:  provider,
		listener:  listener,
		state:     constants.StateCalendar,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitFeed: habitFeed,
		calc:      stats.New(nil),
		year:      time.Now().Year(),
	}
	m.grid = grid.New(m.year, calendar.WeekStartMonday)

	if err := m.openActiveFeed(); err != nil {
		return Model{}, err
	}
	if err := m.openMultiFeed(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// openActiveFeed (re)starts the date feed for the habit under the tab
// cursor. The previous feed is detached first.
func (m *Model) openActiveFeed() error {
	if m.dateFeed != nil {
		m.dateFeed.Stop()
		m.dateFeed = nil
	}

	habits := m.habitFeed.Habits()
	if len(habits) == 0 {
		return nil
	}
	if m.activeIdx >= len(habits) {
		m.activeIdx = len(habits) - 1
	}

	feed := sync.NewDateFeed(m.store, m.provider, habits[m.activeIdx].ID)
	if err := feed.Start(m.listener); err != nil {
		return err
	}
	m.dateFeed = feed
	return nil
}

// openMultiFeed (re)starts the aggregate feed over every habit.
func (m *Model) openMultiFeed() error {
	if m.multiFeed != nil {
		m.multiFeed.Stop()
		m.multiFeed = nil
	}

	habits := m.habitFeed.Habits()
	if len(habits) == 0 {
		return nil
	}
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}

	feed := sync.NewMultiDateFeed(m.store, m.provider, ids)
	if err := feed.Start(m.listener); err != nil {
		return err
	}
	m.multiFeed = feed
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.watchFeeds()...)
}

// watchFeeds returns one wakeup command per live feed.
func (m Model) watchFeeds() []tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.habitFeed.Changed(), "habits")}
	if m.dateFeed != nil {
		cmds = append(cmds, waitForChange(m.dateFeed.Changed(), "dates"))
	}
	if m.multiFeed != nil {
		cmds = append(cmds, waitForChange(m.multiFeed.Changed(), "multi"))
	}
	return cmds
}

// waitForChange parks until the feed signals. A closed channel means the
// feed was stopped during a rebuild; the watcher exits without a message
// rather than lingering.
func waitForChange(ch <-chan struct{}, source string) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{source: source}
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Toggle, m.keys.FillMonth, m.keys.NextHabit, m.keys.Stats}
	if m.allView {
		keys = []key.Binding{m.keys.AllHabits, m.keys.Stats}
	}
	return append(keys, m.keys.Help, m.keys.Quit)
}

func (m Model) FullHelp() [][]key.Binding {
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Today}
	marking := []key.Binding{m.keys.Toggle, m.keys.FillMonth}
	habits := []key.Binding{m.keys.NextHabit, m.keys.PrevHabit, m.keys.Add, m.keys.Rename, m.keys.Color, m.keys.Delete}
	global := []key.Binding{m.keys.AllHabits, m.keys.Stats, m.keys.Export, m.keys.Help, m.keys.Quit}
	return [][]key.Binding{navigation, marking, habits, global}
}

// activeHabit returns the habit under the tab cursor, if any.
func (m Model) activeHabit() (id, title, color string, ok bool) {
	habits := m.habitFeed.Habits()
	if len(habits) == 0 || m.activeIdx >= len(habits) {
		return "", "", "", false
	}
	h := habits[m.activeIdx]
	return h.ID, h.Title, h.Color, true
}

// cursorDate returns the grid cursor as a YYYY-MM-DD string.
func (m Model) cursorDate() string {
	return calendar.FormatISODate(m.year, m.grid.CursorMonth+1, m.grid.CursorDay)
}

func newHabitForm(form *HabitFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				CharLimit(60).
				Value(&form.Title).
				Validate(func(s string) error {
					if s == "" {
						return errEmptyTitle
					}
					return nil
				}),
		),
	)
}
