package sync

import (
	"fmt"
	"strings"
	gosync "sync"

	"habitgrid/internal/auth"
	"habitgrid/internal/calendar"
	"habitgrid/internal/errors"
	"habitgrid/internal/models"
	"habitgrid/internal/store"
)

// DateFeed mirrors the completed dates of a single habit. Toggles and
// month fills update the mirror as soon as the store round-trip returns;
// the change feed folds in writes from other sessions.
type DateFeed struct {
	store    Store
	provider auth.Provider
	habitID  string

	mu      gosync.Mutex
	dates   []models.HabitDate
	stopped bool

	changed     chan struct{}
	unsubscribe func()
}

// NewDateFeed builds a feed for one habit's dates.
func NewDateFeed(st Store, provider auth.Provider, habitID string) *DateFeed {
	return &DateFeed{
		store:    st,
		provider: provider,
		habitID:  habitID,
		changed:  make(chan struct{}, 1),
	}
}

// Start fetches the habit's dates and attaches to the change feed.
func (f *DateFeed) Start(sub Subscriber) error {
	if _, ok := f.provider.CurrentUser(); !ok || f.habitID == "" {
		f.mu.Lock()
		f.dates = nil
		f.mu.Unlock()
		return nil
	}

	dates, err := f.store.ListDates(f.habitID)
	if err != nil {
		return fmt.Errorf("fetch dates: %w", err)
	}

	f.mu.Lock()
	f.dates = dates
	f.mu.Unlock()

	if sub != nil {
		f.unsubscribe = sub.Subscribe(f.handleEvent)
	}
	return nil
}

// Stop detaches from the change feed and closes Changed, so parked
// watchers wake up and exit instead of leaking.
func (f *DateFeed) Stop() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		close(f.changed)
	}
	f.mu.Unlock()
}

// Changed signals after every collection update. Closed by Stop.
func (f *DateFeed) Changed() <-chan struct{} {
	return f.changed
}

// Dates returns a copy of the mirrored rows.
func (f *DateFeed) Dates() []models.HabitDate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.HabitDate, len(f.dates))
	copy(out, f.dates)
	return out
}

// SelectedDates returns the mirrored dates as YYYY-MM-DD strings.
func (f *DateFeed) SelectedDates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.dates))
	for i, d := range f.dates {
		out[i] = d.Date
	}
	return out
}

// IsSelected reports whether the habit is marked done on the given date.
func (f *DateFeed) IsSelected(date string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.find(date)
	return ok
}

// ToggleDate inserts the date if absent and deletes it if present,
// returning the new selection state. The local mirror is updated with the
// decided action as soon as the store confirms, without waiting for the
// change feed.
func (f *DateFeed) ToggleDate(date string) (bool, error) {
	if _, ok := f.provider.CurrentUser(); !ok {
		return false, errors.ErrNotAuthenticated
	}
	if f.habitID == "" {
		return false, fmt.Errorf("no habit selected")
	}

	f.mu.Lock()
	existingID, exists := f.find(date)
	f.mu.Unlock()

	if exists {
		if err := f.store.DeleteDate(existingID); err != nil {
			return true, err
		}
		f.mu.Lock()
		f.dates = RemoveDate(f.dates, existingID)
		f.mu.Unlock()
		f.notify()
		return false, nil
	}

	inserted, err := f.store.InsertDate(f.habitID, date)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	f.dates = UpsertDate(f.dates, inserted)
	f.mu.Unlock()
	f.notify()
	return true, nil
}

// InitializeMonth fills or clears a whole month in one bulk statement: if
// every day is already selected the month is cleared, otherwise the
// missing days are inserted. Local state is untouched until the store
// round-trip succeeds, so a failure leaves no partial mirror.
func (f *DateFeed) InitializeMonth(year, monthIndex int) error {
	if _, ok := f.provider.CurrentUser(); !ok {
		return errors.ErrNotAuthenticated
	}
	if f.habitID == "" {
		return fmt.Errorf("no habit selected")
	}

	monthDates := calendar.MonthDates(monthIndex, year)

	f.mu.Lock()
	selected := make(map[string]models.HabitDate, len(f.dates))
	for _, d := range f.dates {
		selected[d.Date] = d
	}
	f.mu.Unlock()

	allSelected := true
	var missing []string
	for _, date := range monthDates {
		if _, ok := selected[date]; !ok {
			allSelected = false
			missing = append(missing, date)
		}
	}

	if allSelected {
		prefix := calendar.FormatISODate(year, monthIndex+1, 1)[:8]
		var ids []string
		for date, d := range selected {
			if strings.HasPrefix(date, prefix) {
				ids = append(ids, d.ID)
			}
		}
		if err := f.store.DeleteDates(ids); err != nil {
			return err
		}
		f.mu.Lock()
		for _, id := range ids {
			f.dates = RemoveDate(f.dates, id)
		}
		f.mu.Unlock()
		f.notify()
		return nil
	}

	inserted, err := f.store.InsertDates(f.habitID, missing)
	if err != nil {
		return err
	}
	f.mu.Lock()
	for _, d := range inserted {
		f.dates = UpsertDate(f.dates, d)
	}
	f.mu.Unlock()
	f.notify()
	return nil
}

func (f *DateFeed) handleEvent(event store.ChangeEvent) {
	if event.Table != store.TableHabitDates || event.HabitDate == nil {
		return
	}
	if event.HabitDate.HabitID != f.habitID {
		return
	}

	f.mu.Lock()
	switch event.Op {
	case store.OpInsert, store.OpUpdate:
		f.dates = UpsertDate(f.dates, *event.HabitDate)
	case store.OpDelete:
		f.dates = RemoveDate(f.dates, event.HabitDate.ID)
	}
	f.mu.Unlock()
	f.notify()
}

// find returns the row id mirrored for a date. The id comes back by value
// so callers can release f.mu before the store round-trip; a pointer into
// f.dates would race the change-feed merges. Caller holds f.mu.
func (f *DateFeed) find(date string) (string, bool) {
	for i := range f.dates {
		if f.dates[i].Date == date {
			return f.dates[i].ID, true
		}
	}
	return "", false
}

func (f *DateFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	select {
	case f.changed <- struct{}{}:
	default:
	}
}
