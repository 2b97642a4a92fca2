package watcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Debouncer merges bursts of file events into batches, so unpacking an
// archive into the mods folder costs one rebuild instead of hundreds.
//
// A batch is emitted once no event has arrived for the window, or once
// maxWait has passed since the first event of the burst, whichever is first.
type Debouncer struct {
	window  time.Duration
	maxWait time.Duration

	mu         sync.Mutex
	pending    map[string]pendingEvent
	burstStart time.Time
	timer      *time.Timer
	out        chan []FileEvent
	closed     bool
}

type pendingEvent struct {
	first Operation
	event FileEvent
}

// NewDebouncer creates a debouncer. A maxWait of zero or less than window
// disables the upper bound.
func NewDebouncer(window, maxWait time.Duration) *Debouncer {
	if maxWait < window {
		maxWait = 0
	}
	return &Debouncer{
		window:  window,
		maxWait: maxWait,
		pending: make(map[string]pendingEvent),
		out:     make(chan []FileEvent, 10),
	}
}

// mergeOps folds a new operation into the first one seen for a path during
// a burst. keep is false when the two cancel out.
func mergeOps(first, next Operation) (op Operation, keep bool) {
	switch {
	case first == OpCreate && next == OpModify:
		return OpCreate, true
	case first == OpCreate && next == OpDelete:
		return 0, false
	case first == OpDelete && next == OpCreate:
		return OpModify, true
	default:
		return next, true
	}
}

// Add queues an event and restarts the quiet-period timer.
func (d *Debouncer) Add(ev FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if len(d.pending) == 0 {
		d.burstStart = time.Now()
	}

	if p, ok := d.pending[ev.Path]; ok {
		op, keep := mergeOps(p.first, ev.Operation)
		if !keep {
			delete(d.pending, ev.Path)
		} else {
			ev.Operation = op
			d.pending[ev.Path] = pendingEvent{first: p.first, event: ev}
		}
	} else {
		d.pending[ev.Path] = pendingEvent{first: ev.Operation, event: ev}
	}

	d.resetTimer()
}

// resetTimer must be called with mu held.
func (d *Debouncer) resetTimer() {
	wait := d.window
	if d.maxWait > 0 {
		if left := d.maxWait - time.Since(d.burstStart); left < wait {
			wait = max(left, 0)
		}
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.flush)
		return
	}
	d.timer.Reset(wait)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || len(d.pending) == 0 {
		return
	}

	batch := make([]FileEvent, 0, len(d.pending))
	for _, p := range d.pending {
		batch = append(batch, p.event)
	}
	clear(d.pending)
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	select {
	case d.out <- batch:
	default:
		slog.Warn("watch batch dropped, consumer too slow", slog.Int("events", len(batch)))
	}
}

// Output returns the channel batches are sent on, sorted by path.
func (d *Debouncer) Output() <-chan []FileEvent {
	return d.out
}

// Pending returns the number of paths waiting for the next batch.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop discards pending events and closes Output. It is idempotent.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	clear(d.pending)
	close(d.out)
}
