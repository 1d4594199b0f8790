package sync

import (
	"fmt"
	gosync "sync"

	"habitgrid/internal/auth"
	"habitgrid/internal/models"
	"habitgrid/internal/store"
)

// MultiDateFeed mirrors the dates of several habits at once for the
// aggregate all-habits view. One IN query fetches everything and one
// shared subscription filters inbound events by habit membership. The
// feed is read-only; mutation stays with the single-habit DateFeed.
type MultiDateFeed struct {
	store    Store
	provider auth.Provider
	habitIDs []string
	members  map[string]struct{}

	mu      gosync.Mutex
	dates   map[string][]models.HabitDate
	stopped bool

	changed     chan struct{}
	unsubscribe func()
}

// NewMultiDateFeed builds a feed over the given habit ids.
func NewMultiDateFeed(st Store, provider auth.Provider, habitIDs []string) *MultiDateFeed {
	members := make(map[string]struct{}, len(habitIDs))
	for _, id := range habitIDs {
		members[id] = struct{}{}
	}
	return &MultiDateFeed{
		store:    st,
		provider: provider,
		habitIDs: habitIDs,
		members:  members,
		changed:  make(chan struct{}, 1),
	}
}

// Start fetches all dates grouped by habit and attaches to the change feed.
func (f *MultiDateFeed) Start(sub Subscriber) error {
	if _, ok := f.provider.CurrentUser(); !ok || len(f.habitIDs) == 0 {
		f.mu.Lock()
		f.dates = map[string][]models.HabitDate{}
		f.mu.Unlock()
		return nil
	}

	grouped, err := f.store.ListDatesForHabits(f.habitIDs)
	if err != nil {
		return fmt.Errorf("fetch multi-habit dates: %w", err)
	}

	f.mu.Lock()
	f.dates = grouped
	f.mu.Unlock()

	if sub != nil {
		f.unsubscribe = sub.Subscribe(f.handleEvent)
	}
	return nil
}

// Stop detaches from the change feed and closes Changed.
func (f *MultiDateFeed) Stop() {
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
func (f *MultiDateFeed) Changed() <-chan struct{} {
	return f.changed
}

// DatesFor returns a copy of the mirrored rows for one habit.
func (f *MultiDateFeed) DatesFor(habitID string) []models.HabitDate {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.dates[habitID]
	out := make([]models.HabitDate, len(src))
	copy(out, src)
	return out
}

// DateStringsFor returns one habit's dates as YYYY-MM-DD strings.
func (f *MultiDateFeed) DateStringsFor(habitID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.dates[habitID]
	out := make([]string, len(src))
	for i, d := range src {
		out[i] = d.Date
	}
	return out
}

// IsSelected reports whether a habit is marked done on a date.
func (f *MultiDateFeed) IsSelected(habitID, date string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dates[habitID] {
		if d.Date == date {
			return true
		}
	}
	return false
}

// TotalCount returns the number of mirrored rows across all habits.
func (f *MultiDateFeed) TotalCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, ds := range f.dates {
		total += len(ds)
	}
	return total
}

func (f *MultiDateFeed) handleEvent(event store.ChangeEvent) {
	if event.Table != store.TableHabitDates || event.HabitDate == nil {
		return
	}
	habitID := event.HabitDate.HabitID
	if _, ok := f.members[habitID]; !ok {
		return
	}

	f.mu.Lock()
	switch event.Op {
	case store.OpInsert, store.OpUpdate:
		f.dates[habitID] = UpsertDate(f.dates[habitID], *event.HabitDate)
	case store.OpDelete:
		f.dates[habitID] = RemoveDate(f.dates[habitID], event.HabitDate.ID)
	}
	f.mu.Unlock()

	f.notify()
}

func (f *MultiDateFeed) notify() {
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
