package sync

import (
	"fmt"
	gosync "sync"

	"habitgrid/internal/auth"
	"habitgrid/internal/constants"
	"habitgrid/internal/errors"
	"habitgrid/internal/logger"
	"habitgrid/internal/models"
	"habitgrid/internal/store"
)

// HabitFeed mirrors the signed-in user's habit list. It is the only owner
// of its collection; all mutation goes through its methods or the change
// feed. A mutex guards the slice because change events arrive on the
// listener's goroutine.
type HabitFeed struct {
	store    Store
	provider auth.Provider

	mu      gosync.Mutex
	habits  []models.Habit
	stopped bool

	changed     chan struct{}
	unsubscribe func()
}

// NewHabitFeed builds a feed over the given store and auth collaborator.
func NewHabitFeed(st Store, provider auth.Provider) *HabitFeed {
	return &HabitFeed{
		store:    st,
		provider: provider,
		changed:  make(chan struct{}, 1),
	}
}

// Start fetches the initial snapshot and, when a subscriber is given,
// attaches to the change feed. With no signed-in user the collection is
// simply empty.
func (f *HabitFeed) Start(sub Subscriber) error {
	user, ok := f.provider.CurrentUser()
	if !ok {
		f.mu.Lock()
		f.habits = nil
		f.mu.Unlock()
		return nil
	}

	habits, err := f.store.ListHabits(user.ID)
	if err != nil {
		return fmt.Errorf("fetch habits: %w", err)
	}

	f.mu.Lock()
	f.habits = habits
	f.mu.Unlock()

	if sub != nil {
		f.unsubscribe = sub.Subscribe(f.handleEvent)
	}
	return nil
}

// Stop detaches from the change feed and closes Changed. Safe to call
// without Start.
func (f *HabitFeed) Stop() {
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

// Changed signals after every collection update; the TUI selects on it to
// repaint. The channel drops signals when full and is closed by Stop.
func (f *HabitFeed) Changed() <-chan struct{} {
	return f.changed
}

// Habits returns a copy of the mirrored collection.
func (f *HabitFeed) Habits() []models.Habit {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Habit, len(f.habits))
	copy(out, f.habits)
	return out
}

// Len returns the current habit count.
func (f *HabitFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.habits)
}

// Create inserts a habit and appends it optimistically. An empty color
// gets the default. The confirming change event merges idempotently.
func (f *HabitFeed) Create(title, color string) (models.Habit, error) {
	user, ok := f.provider.CurrentUser()
	if !ok {
		return models.Habit{}, errors.ErrNotAuthenticated
	}
	if f.Len() >= constants.MaxHabits {
		return models.Habit{}, fmt.Errorf("habit limit of %d reached", constants.MaxHabits)
	}
	if color == "" {
		color = constants.DefaultHabitColor
	}

	habit, err := f.store.CreateHabit(user.ID, title, color)
	if err != nil {
		return models.Habit{}, err
	}

	f.mu.Lock()
	f.habits = UpsertHabit(f.habits, habit)
	f.mu.Unlock()
	f.notify()

	return habit, nil
}

// Update applies a partial title/color mutation optimistically.
func (f *HabitFeed) Update(id string, update models.HabitUpdate) (models.Habit, error) {
	user, ok := f.provider.CurrentUser()
	if !ok {
		return models.Habit{}, errors.ErrNotAuthenticated
	}

	habit, err := f.store.UpdateHabit(user.ID, id, update)
	if err != nil {
		return models.Habit{}, err
	}

	f.mu.Lock()
	f.habits = UpsertHabit(f.habits, habit)
	f.mu.Unlock()
	f.notify()

	return habit, nil
}

// Delete removes a habit locally and remotely. The caller guarantees at
// least one habit remains and reassigns the active habit if needed; this
// layer does not enforce either.
func (f *HabitFeed) Delete(id string) error {
	user, ok := f.provider.CurrentUser()
	if !ok {
		return errors.ErrNotAuthenticated
	}

	if err := f.store.DeleteHabit(user.ID, id); err != nil {
		return err
	}

	f.mu.Lock()
	f.habits = RemoveHabit(f.habits, id)
	f.mu.Unlock()
	f.notify()

	return nil
}

func (f *HabitFeed) handleEvent(event store.ChangeEvent) {
	if event.Table != store.TableHabits || event.Habit == nil {
		return
	}
	user, ok := f.provider.CurrentUser()
	if !ok || event.Habit.UserID != user.ID {
		return
	}

	f.mu.Lock()
	switch event.Op {
	case store.OpInsert, store.OpUpdate:
		f.habits = UpsertHabit(f.habits, *event.Habit)
	case store.OpDelete:
		f.habits = RemoveHabit(f.habits, event.Habit.ID)
	}
	f.mu.Unlock()

	logger.Debug("Applied habit change event", "op", event.Op, "id", event.Habit.ID)
	f.notify()
}

func (f *HabitFeed) notify() {
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
