package power

import (
	"sync"
	"sync/atomic"
)

// Store publishes metrics from the estimator to any number of readers.
// A publish swaps a single pointer, so readers see either the previous or the
// new Metrics, never a mix of both.
type Store struct {
	latest atomic.Pointer[Metrics]
	seq    atomic.Uint64

	callbacks []func(Metrics)
	cbMu      sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Publish stores m as the latest metrics, stamps its sequence number and
// notifies the registered callbacks. Only one goroutine may publish.
func (s *Store) Publish(m Metrics) Metrics {
	m.Seq = s.seq.Add(1)
	s.latest.Store(&m)
	s.notifyCallbacks(m)
	return m
}

// Latest returns the most recently published metrics.
func (s *Store) Latest() (Metrics, bool) {
	p := s.latest.Load()
	if p == nil {
		return Metrics{}, false
	}
	return *p, true
}

// Ready reports whether any metrics have been published.
func (s *Store) Ready() bool {
	return s.latest.Load() != nil
}

// OnUpdate registers a callback invoked after every publish.
func (s *Store) OnUpdate(fn func(Metrics)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *Store) notifyCallbacks(m Metrics) {
	s.cbMu.RLock()
	callbacks := s.callbacks
	s.cbMu.RUnlock()

	for _, fn := range callbacks {
		fn(m)
	}
}
