package table

import (
	"sync"
	"time"
)

// Debouncer buffers rapid filter-text input and commits it once the input
// has been quiet for a fixed interval. It is an explicit two-state machine:
// Pending(text, deadline) while keystrokes are arriving, Committed(text)
// once the interval elapses or Flush is called.
//
// Debouncing is purely a recomputation-saving measure. The committed value
// is always the last Put, so the final result never depends on the
// interval; callers that need determinism (tests, the CLI) call Flush.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer

	pending    string
	hasPending bool
	committed  string

	commit func(text string)
}

// NewDebouncer creates a debouncer that invokes commit with the settled
// text. A non-positive interval commits synchronously on every Put.
func NewDebouncer(interval time.Duration, commit func(text string)) *Debouncer {
	return &Debouncer{interval: interval, commit: commit}
}

// Put records new input and (re)arms the quiet-interval deadline.
func (d *Debouncer) Put(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.interval <= 0 {
		d.committed = text
		d.hasPending = false
		if d.commit != nil {
			d.commit(text)
		}
		return
	}

	d.pending = text
	d.hasPending = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.Flush)
}

// Flush commits any pending input immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.hasPending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	text := d.pending
	d.hasPending = false
	d.committed = text
	commit := d.commit
	d.mu.Unlock()

	if commit != nil {
		commit(text)
	}
}

// Committed returns the last committed text.
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Pending reports whether input is waiting for the quiet interval.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}
