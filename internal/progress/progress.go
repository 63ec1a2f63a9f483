package progress

import "sync"

// Reporter receives per-item progress during plan execution
type Reporter interface {
	// SetTotal sets the number of work units for the run
	SetTotal(total int)
	// Tick marks one work unit done, carrying a human-readable message
	Tick(message string)
}

// Callback receives progress updates as (message, current, total)
type Callback func(message string, current, total int)

// CallbackReporter implements Reporter by forwarding ticks to a callback
type CallbackReporter struct {
	mu       sync.Mutex
	callback Callback
	current  int
	total    int
}

// NewCallbackReporter creates a new CallbackReporter
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{callback: callback}
}

// SetTotal sets the total number of work units
func (r *CallbackReporter) SetTotal(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.current = 0
}

// Tick advances progress by one unit
func (r *CallbackReporter) Tick(message string) {
	r.mu.Lock()
	r.current++
	current := r.current
	total := r.total
	callback := r.callback
	r.mu.Unlock()

	// Invoke outside the lock so a slow consumer cannot deadlock us
	if callback != nil {
		callback(message, current, total)
	}
}

// Current returns the number of units completed so far
func (r *CallbackReporter) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// NullReporter discards all progress updates
type NullReporter struct{}

func (NullReporter) SetTotal(total int) {}
func (NullReporter) Tick(message string) {}
