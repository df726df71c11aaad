package telemetry

import "sync"

// DefaultSeriesCapacity is the default maximum number of retained readings.
const DefaultSeriesCapacity = 10000

// Series is a fixed-size ring buffer of readings for long-running watch
// sessions. It is thread-safe and evicts the oldest reading when full.
type Series struct {
	data     []Reading
	capacity int
	head     int // Next write position
	size     int // Current element count
	mu       sync.RWMutex
}

// NewSeries creates a Series with the specified capacity.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	return &Series{
		data:     make([]Reading, capacity),
		capacity: capacity,
	}
}

// Push adds a reading, evicting the oldest if at capacity.
// Readings without a usable timestamp are ignored.
func (s *Series) Push(r Reading) {
	if !r.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[s.head] = r
	s.head = (s.head + 1) % s.capacity

	if s.size < s.capacity {
		s.size++
	}
}

// Len returns the current number of readings.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Snapshot returns all retained readings in chronological order.
func (s *Series) Snapshot() []Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reading, s.size)
	for i := 0; i < s.size; i++ {
		idx := (s.head - s.size + i + s.capacity) % s.capacity
		out[i] = s.data[idx]
	}
	return out
}

// ValuesFor returns the in-order values of one metric across the retained
// readings, skipping readings where the metric is absent.
func (s *Series) ValuesFor(metric string) []float64 {
	var values []float64
	for _, r := range s.Snapshot() {
		if v, ok := r.Get(metric); ok {
			values = append(values, v)
		}
	}
	return values
}
