package alerts

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// AlertNotFoundError indicates an alert ID is not in the retained history.
type AlertNotFoundError struct {
	ID int64
}

func (e *AlertNotFoundError) Error() string {
	return fmt.Sprintf("alert %d not found", e.ID)
}

// Summary is the breakdown of alerts raised within a trailing window.
type Summary struct {
	WindowHours    float64
	Total          int
	Acknowledged   int
	Unacknowledged int
	BySeverity     map[Severity]int
	ByKind         map[Kind]int
}

// Store owns the append-only alert history. Entries are never removed or
// mutated once appended, except for capped oldest-first eviction and
// acknowledgment. The store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	alerts     []*Alert
	nextID     int64
	maxEntries int
}

// NewStore creates a store retaining at most maxEntries alerts.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Store{
		nextID:     1,
		maxEntries: maxEntries,
	}
}

// SeedNextID raises the next assigned ID so in-memory IDs continue from
// persisted history instead of colliding with it.
func (s *Store) SeedNextID(next int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next > s.nextID {
		s.nextID = next
	}
}

// Restore seeds the store with previously persisted alerts so cooldown
// lookups and ID assignment continue across process restarts. Entries are
// ordered by ID before any alerts appended later, and the retention cap
// applies as usual.
func (s *Store) Restore(history []Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]*Alert, 0, len(history))
	for i := range history {
		a := history[i]
		restored = append(restored, &a)
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
	}
	sort.Slice(restored, func(i, j int) bool {
		return restored[i].ID < restored[j].ID
	})

	s.alerts = append(restored, s.alerts...)
	if len(s.alerts) > s.maxEntries {
		s.alerts = s.alerts[len(s.alerts)-s.maxEntries:]
	}
}

// Append assigns an ID, appends the alert to history, and evicts the oldest
// entry if the cap is exceeded. The stored copy is returned.
func (s *Store) Append(a Alert) Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++

	stored := a
	s.alerts = append(s.alerts, &stored)

	if len(s.alerts) > s.maxEntries {
		s.alerts = s.alerts[len(s.alerts)-s.maxEntries:]
	}

	return stored
}

// Len returns the number of retained alerts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// All returns the retained history in append order.
func (s *Store) All() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alert, len(s.alerts))
	for i, a := range s.alerts {
		out[i] = *a
	}
	return out
}

// Active returns the unacknowledged alerts in history order.
func (s *Store) Active() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Alert
	for _, a := range s.alerts {
		if !a.IsAcknowledged() {
			out = append(out, *a)
		}
	}
	return out
}

// Acknowledge marks an alert acknowledged, recording the actor and time.
// Acknowledging an already-acknowledged alert is a no-op, not an error.
func (s *Store) Acknowledge(id int64, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			a.acknowledge(user, time.Now())
			return nil
		}
	}
	return &AlertNotFoundError{ID: id}
}

// LastRaised returns the timestamp of the most recent alert matching the
// (metric, kind, severity) bucket.
func (s *Store) LastRaised(metric string, kind Kind, severity Severity) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if a.Metric == metric && a.Kind == kind && a.Severity == severity {
			return a.Timestamp, true
		}
	}
	return time.Time{}, false
}

// Summary counts retained alerts raised within the trailing window ending
// at now, broken down by severity and kind.
func (s *Store) Summary(window time.Duration, now time.Time) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{
		WindowHours: window.Hours(),
		BySeverity:  make(map[Severity]int),
		ByKind:      make(map[Kind]int),
	}

	cutoff := now.Add(-window)
	for _, a := range s.alerts {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		summary.Total++
		summary.BySeverity[a.Severity]++
		summary.ByKind[a.Kind]++
		if a.IsAcknowledged() {
			summary.Acknowledged++
		} else {
			summary.Unacknowledged++
		}
	}

	return summary
}
