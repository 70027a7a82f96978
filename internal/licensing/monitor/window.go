package monitor

import (
	"sync"
	"time"
)

// window is an insertion-ordered list of event times. Events older than the
// cutoff are pruned from the front on every read and write, so memory stays
// bounded by the event rate over one window.
type window struct {
	mu     sync.Mutex
	events []time.Time
	head   int // events[:head] are pruned
}

func (w *window) add(now time.Time, span time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, now)
	w.prune(now.Add(-span))
}

func (w *window) count(now time.Time, span time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now.Add(-span))
	return len(w.events) - w.head
}

// prune drops events at or before cutoff. Caller holds mu.
func (w *window) prune(cutoff time.Time) {
	for w.head < len(w.events) && !w.events[w.head].After(cutoff) {
		w.head++
	}
	switch {
	case w.head == len(w.events):
		w.events = w.events[:0]
		w.head = 0
	case w.head > len(w.events)/2:
		// Compact once more than half the slice is pruned.
		n := copy(w.events, w.events[w.head:])
		w.events = w.events[:n]
		w.head = 0
	}
}
