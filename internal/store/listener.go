package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"habitgrid/internal/constants"
	"habitgrid/internal/logger"
	"habitgrid/internal/models"
)

// Op is the kind of row change carried by a ChangeEvent.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

const (
	TableHabits     = "habits"
	TableHabitDates = "habit_dates"
)

// ChangeEvent is one decoded change-feed notification. Exactly one of
// Habit or HabitDate is set, matching Table. For deletes it carries the
// old row.
type ChangeEvent struct {
	Table     string
	Op        Op
	Habit     *models.Habit
	HabitDate *models.HabitDate
}

// Listener subscribes to the habitgrid_changes NOTIFY channel and fans
// decoded events out to subscribers. Handlers run on the listener's
// goroutine; subscribers hand off to their own loop.
type Listener struct {
	pql  *pq.Listener
	mu   sync.Mutex
	subs map[int]func(ChangeEvent)
	next int
	done chan struct{}
}

// NewListener creates a change-feed listener on the same database as the
// client. Reconnection is handled by pq with bounded backoff.
func NewListener(connStr string) *Listener {
	pql := pq.NewListener(connStr, constants.ListenerMinReconnect, constants.ListenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventConnectionAttemptFailed:
				logger.Warn("Change feed connection attempt failed", "error", err)
			case pq.ListenerEventDisconnected:
				logger.Warn("Change feed disconnected", "error", err)
			case pq.ListenerEventReconnected:
				logger.Info("Change feed reconnected")
			}
		})

	return &Listener{
		pql:  pql,
		subs: make(map[int]func(ChangeEvent)),
		done: make(chan struct{}),
	}
}

// Start begins listening and dispatching events.
func (l *Listener) Start() error {
	if err := l.pql.Listen(constants.NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", constants.NotifyChannel, err)
	}
	go l.loop()
	return nil
}

// Subscribe registers a handler and returns its unsubscribe handle. The
// handle is safe to call more than once.
func (l *Listener) Subscribe(fn func(ChangeEvent)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.next
	l.next++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Close stops dispatching and tears down the database listener.
func (l *Listener) Close() error {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	return l.pql.Close()
}

func (l *Listener) loop() {
	for {
		select {
		case <-l.done:
			return
		case n := <-l.pql.Notify:
			// A nil notification signals a reconnect; subscribers refetch
			// on their next user action, so a resync is not forced here.
			if n == nil {
				continue
			}
			event, err := decodePayload(n.Extra)
			if err != nil {
				logger.Warn("Dropping undecodable change event", "error", err)
				continue
			}
			l.dispatch(event)
		case <-time.After(90 * time.Second):
			// Keep the connection warm; pq reconnects on failure.
			go func() {
				if err := l.pql.Ping(); err != nil {
					logger.Warn("Change feed ping failed", "error", err)
				}
			}()
		}
	}
}

func (l *Listener) dispatch(event ChangeEvent) {
	l.mu.Lock()
	handlers := make([]func(ChangeEvent), 0, len(l.subs))
	for _, fn := range l.subs {
		handlers = append(handlers, fn)
	}
	l.mu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// notifyPayload mirrors the JSON built by the habitgrid_notify_change
// trigger: {"table": ..., "op": ..., "row": {...}}.
type notifyPayload struct {
	Table string          `json:"table"`
	Op    Op              `json:"op"`
	Row   json.RawMessage `json:"row"`
}

// habitDateRow is the wire shape of a habit_dates row; the DATE column
// serializes as a plain YYYY-MM-DD string.
type habitDateRow struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func decodePayload(raw string) (ChangeEvent, error) {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ChangeEvent{}, fmt.Errorf("invalid change payload: %w", err)
	}

	switch payload.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change op %q", payload.Op)
	}

	event := ChangeEvent{Table: payload.Table, Op: payload.Op}
	switch payload.Table {
	case TableHabits:
		var h models.Habit
		if err := json.Unmarshal(payload.Row, &h); err != nil {
			return ChangeEvent{}, fmt.Errorf("invalid habit row: %w", err)
		}
		event.Habit = &h
	case TableHabitDates:
		var r habitDateRow
		if err := json.Unmarshal(payload.Row, &r); err != nil {
			return ChangeEvent{}, fmt.Errorf("invalid habit_date row: %w", err)
		}
		// DATE may arrive with a time suffix depending on serialization.
		date := r.Date
		if len(date) > 10 {
			date = date[:10]
		}
		event.HabitDate = &models.HabitDate{
			ID:        r.ID,
			HabitID:   r.HabitID,
			Date:      date,
			CreatedAt: r.CreatedAt,
		}
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change table %q", payload.Table)
	}

	return event, nil
}
