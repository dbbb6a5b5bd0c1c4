package crm

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls into a single trailing-edge invocation:
// the function runs once, d after the last call, with whatever closure the
// last call supplied. Used to keep keystroke-driven searches from running
// the pipeline on every character.
type Debouncer struct {
	d     time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given quiet window.
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

// Do schedules f to run after the quiet window, replacing any pending
// invocation.
func (db *Debouncer) Do(f func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, f)
}

// Stop cancels any pending invocation.
func (db *Debouncer) Stop() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
