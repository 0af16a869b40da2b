package audit

import (
	"context"
	"sync"
)

// MemoryRecorder keeps the most recent events in a bounded ring. Used in dev
// mode and in tests that assert on emitted events.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

const defaultMemoryLimit = 1024

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{limit: defaultMemoryLimit}
}

func (r *MemoryRecorder) Record(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	if len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
	return nil
}

// Events returns a snapshot of recorded events, oldest first.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
