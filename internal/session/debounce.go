package session

import (
	"strconv"
	"sync"
	"time"
)

// DefaultTapWindow is how long a repeated tap on the same option is ignored.
const DefaultTapWindow = 250 * time.Millisecond

// Debouncer coalesces triggers for the same key that arrive within a short
// window, so a gesture that fires twice reaches the engine once.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultTapWindow
	}
	return &Debouncer{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether a trigger for key should pass. A trigger inside the
// window of the last allowed one is dropped and does not extend the window.
func (d *Debouncer) Allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.last[key]; ok && now.Sub(at) < d.window {
		return false
	}
	d.last[key] = now
	if len(d.last) > 256 {
		d.prune(now)
	}
	return true
}

func (d *Debouncer) prune(now time.Time) {
	for k, at := range d.last {
		if now.Sub(at) >= d.window {
			delete(d.last, k)
		}
	}
}

// TapKey identifies an option tap.
func TapKey(question, option int) string {
	return strconv.Itoa(question) + ":" + strconv.Itoa(option)
}
