// internal/storage/memory.go
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
)

// lastUpdateLayout is second-precision, what the dashboard displays verbatim.
const lastUpdateLayout = "2006-01-02 15:04:05"

type numericSeries struct {
	axis    data.AxisPolicy
	current float64
	samples []float64
}

// Store is the single synchronization domain for all metric state: current
// values, bounded per-metric histories and the shared timestamp axis. One
// writer path (the ingest router) mutates it; any number of reader paths take
// copied snapshots. All multi-field mutations happen under one lock
// acquisition, so no reader ever observes a current value without its history
// entry.
type Store struct {
	mu         sync.RWMutex
	capacity   int
	numeric    map[string]*numericSeries
	status     map[string]string
	timestamps []string
	lastUpdate string
}

func NewStore(capacity int) *Store {
	return &Store{
		capacity: capacity,
		numeric:  make(map[string]*numericSeries),
		status:   make(map[string]string),
	}
}

// RegisterNumeric declares a numeric metric before any updates arrive. The
// axis policy decides whether its updates append to the shared timestamp axis.
func (s *Store) RegisterNumeric(key string, axis data.AxisPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numeric[key] = &numericSeries{
		axis:    axis,
		samples: make([]float64, 0, s.capacity),
	}
}

// RegisterStatus declares a string metric with its initial value.
func (s *Store) RegisterStatus(key, initial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[key] = initial
}

// Update sets a numeric metric's current value, appends to its bounded
// history and, per its axis policy, to the shared timestamp axis.
func (s *Store) Update(key string, value float64, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.numeric[key]
	if !ok {
		return fmt.Errorf("unregistered numeric metric %q", key)
	}

	m.current = value
	m.samples = appendBounded(m.samples, value, s.capacity)
	s.appendAxis(m, ts)
	s.lastUpdate = ts.Format(lastUpdateLayout)
	return nil
}

// SetStatus sets a string metric's current value. No history, no timestamp
// axis coupling.
func (s *Store) SetStatus(key, value string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.status[key]; !ok {
		return fmt.Errorf("unregistered status metric %q", key)
	}
	s.status[key] = value
	s.lastUpdate = ts.Format(lastUpdateLayout)
	return nil
}

// appendAxis must run after the sample append: the catchup rule compares the
// axis length against the already-grown series.
func (s *Store) appendAxis(m *numericSeries, ts time.Time) {
	switch m.axis {
	case data.AxisAlways:
		s.timestamps = appendBounded(s.timestamps, ts.Format(time.RFC3339), s.capacity)
	case data.AxisCatchup:
		if len(s.timestamps) < len(m.samples) {
			s.timestamps = appendBounded(s.timestamps, ts.Format(time.RFC3339), s.capacity)
		}
	}
}

// Snapshot returns a copy of every current value plus last_update. Safe to
// marshal without holding the store's lock.
func (s *Store) Snapshot() data.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]float64, len(s.numeric))
	for k, m := range s.numeric {
		values[k] = m.current
	}
	statuses := make(map[string]string, len(s.status))
	for k, v := range s.status {
		statuses[k] = v
	}
	return data.Snapshot{Values: values, Statuses: statuses, LastUpdate: s.lastUpdate}
}

// HistorySnapshot returns a copy of every bounded series and the timestamp
// axis. Series lengths may differ across metrics; each is at most capacity.
func (s *Store) HistorySnapshot() data.History {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := make(map[string][]float64, len(s.numeric))
	for k, m := range s.numeric {
		cp := make([]float64, len(m.samples))
		copy(cp, m.samples)
		series[k] = cp
	}
	ts := make([]string, len(s.timestamps))
	copy(ts, s.timestamps)
	return data.History{Series: series, Timestamps: ts}
}

func appendBounded[T any](buf []T, v T, capacity int) []T {
	if len(buf) >= capacity {
		// Remove the oldest element
		buf = buf[1:]
	}
	return append(buf, v)
}
