package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifySuccess, NotifyError, NotifyInfo, NotifyWarning:
		return true
	}
	return false
}

// DefaultDuration is how long a notification of type t stays listed when the
// caller does not choose.
func (t NotificationType) DefaultDuration() time.Duration {
	switch t {
	case NotifyError:
		return 7 * time.Second
	case NotifyWarning:
		return 6 * time.Second
	default:
		return 5 * time.Second
	}
}

type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	DurationMS int64            `json:"duration"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
)

// Event is one change to the notification list. Notification is nil for
// EventCleared.
type Event struct {
	Kind         EventKind     `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
}

const subscriberBuffer = 16

type NotificationStore struct {
	mu     sync.Mutex
	log    *logger.Logger
	items  []Notification
	timers map[string]*time.Timer
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewNotificationStore(log *logger.Logger) *NotificationStore {
	return &NotificationStore{
		log:    log.With("store", "NotificationStore"),
		items:  []Notification{},
		timers: make(map[string]*time.Timer),
		subs:   make(map[int]chan Event),
	}
}

// Add lists a notification and schedules its removal. A zero duration uses
// the type's default; a negative one keeps the notification until removed.
func (s *NotificationStore) Add(typ NotificationType, message string, d time.Duration) (Notification, error) {
	if !typ.Valid() {
		return Notification{}, fmt.Errorf("unknown notification type %q", typ)
	}
	if d == 0 {
		d = typ.DefaultDuration()
	}
	n := Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		Message:    message,
		DurationMS: d.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Notification{}, fmt.Errorf("notification store is closed")
	}
	s.items = append(s.items, n)
	if d > 0 {
		id := n.ID
		s.timers[id] = time.AfterFunc(d, func() { s.Remove(id) })
	}
	s.publishLocked(Event{Kind: EventAdded, Notification: &n})
	return n, nil
}

func (s *NotificationStore) Success(message string) { s.addDefault(NotifySuccess, message) }
func (s *NotificationStore) Error(message string)   { s.addDefault(NotifyError, message) }
func (s *NotificationStore) Info(message string)    { s.addDefault(NotifyInfo, message) }
func (s *NotificationStore) Warning(message string) { s.addDefault(NotifyWarning, message) }

func (s *NotificationStore) addDefault(typ NotificationType, message string) {
	if _, err := s.Add(typ, message, 0); err != nil {
		s.log.Warn("Dropping notification", "type", typ, "error", err)
	}
}

// Remove drops notification id. It reports whether it was listed.
func (s *NotificationStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	n := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.publishLocked(Event{Kind: EventRemoved, Notification: &n})
	return true
}

func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
	s.items = []Notification{}
	s.publishLocked(Event{Kind: EventCleared})
}

// List returns the current notifications, oldest first.
func (s *NotificationStore) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Subscribe streams changes until cancel is called. A subscriber that falls
// behind loses events rather than blocking the store.
func (s *NotificationStore) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops pending expiries and ends every subscription.
func (s *NotificationStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimersLocked()
	for id, c := range s.subs {
		delete(s.subs, id)
		close(c)
	}
}

func (s *NotificationStore) stopTimersLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *NotificationStore) publishLocked(ev Event) {
	for id, c := range s.subs {
		select {
		case c <- ev:
		default:
			s.log.Warn("Notification subscriber full, dropping event", "subscriber", id, "kind", ev.Kind)
		}
	}
}
