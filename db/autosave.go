package db

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SaveFunc persists a session record. The Autosaver calls it once per
// session when the debounce window closes.
type SaveFunc func(ctx context.Context, record SessionRecord) error

// DefaultAutosaveDelay is the debounce window used when no delay is configured.
const DefaultAutosaveDelay = 2 * time.Second

// Autosaver coalesces rapid session updates into periodic writes.
//
// Every Queue call stores the latest record for its session and restarts
// the debounce timer. When the timer fires without further updates, all
// pending sessions are flushed through the SaveFunc. A session updated
// ten times in one second results in a single write.
//
// This is a molecule-level component with managed goroutine lifecycle,
// similar to AsyncWriter. Call Start before queuing and Stop during
// shutdown to flush remaining records.
//
// Usage:
//
//	saver := NewAutosaver(func(ctx context.Context, rec SessionRecord) error {
//	    return repo.UpsertSession(ctx, rec)
//	}, 2*time.Second, nil)
//	saver.Start()
//	defer saver.Stop(context.Background())
//
//	saver.Queue(record) // Returns immediately
type Autosaver struct {
	save    SaveFunc
	delay   time.Duration
	onError func(sessionID string, err error)

	mu      sync.Mutex
	pending map[string]SessionRecord
	started bool
	stopped bool

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewAutosaver creates a new Autosaver.
//
// The save function is required. A non-positive delay falls back to
// DefaultAutosaveDelay. The onError callback is optional and is invoked
// with the session id when a flush write fails; failed records stay
// pending and are retried on the next flush.
func NewAutosaver(save SaveFunc, delay time.Duration, onError func(sessionID string, err error)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		save:    save,
		delay:   delay,
		onError: onError,
		pending: make(map[string]SessionRecord),
		kick:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the background debounce goroutine.
// Calling Start multiple times is safe; only the first call has effect.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started || a.stopped {
		return
	}
	a.started = true
	go a.run()
}

// Queue records the latest state for a session and restarts the debounce
// window. It never blocks. Queuing after Stop is a no-op.
func (a *Autosaver) Queue(record SessionRecord) {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending[record.ID] = record
	a.mu.Unlock()

	// Non-blocking kick; a pending kick already covers this update
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Forget drops any pending record for the session. Callers must use this
// when a session is deleted, otherwise the queued record would flush after
// the debounce window and re-insert the deleted row.
func (a *Autosaver) Forget(sessionID string) {
	a.mu.Lock()
	delete(a.pending, sessionID)
	a.mu.Unlock()
}

// PendingCount returns the number of sessions waiting to be flushed.
func (a *Autosaver) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Flush immediately writes all pending sessions without waiting for the
// debounce timer. Failed records remain pending.
func (a *Autosaver) Flush(ctx context.Context) error {
	batch := a.takePending()
	if len(batch) == 0 {
		return nil
	}

	var firstErr error
	for id, rec := range batch {
		if err := a.save(ctx, rec); err != nil {
			a.requeue(rec)
			if a.onError != nil {
				a.onError(id, err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("autosave session %s: %w", id, err)
			}
		}
	}
	return firstErr
}

// Stop flushes pending sessions and stops the background goroutine.
// The context bounds the final flush. Stop is idempotent.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	wasStarted := a.started
	a.mu.Unlock()

	if wasStarted {
		close(a.quit)
		select {
		case <-a.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return a.Flush(ctx)
}

// run is the debounce loop. It idles until a kick arrives, then flushes
// once the delay elapses without further kicks.
func (a *Autosaver) run() {
	defer close(a.done)

	timer := time.NewTimer(a.delay)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	for {
		select {
		case <-a.quit:
			if timerActive && !timer.Stop() {
				<-timer.C
			}
			return

		case <-a.kick:
			if timerActive && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(a.delay)
			timerActive = true

		case <-timer.C:
			timerActive = false
			// Errors are reported through onError; records stay pending
			_ = a.Flush(context.Background())
		}
	}
}

// takePending atomically swaps out the pending map.
func (a *Autosaver) takePending() map[string]SessionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return nil
	}
	batch := a.pending
	a.pending = make(map[string]SessionRecord)
	return batch
}

// requeue puts a failed record back unless a newer version arrived while
// the flush was in flight.
func (a *Autosaver) requeue(record SessionRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pending[record.ID]; !exists {
		a.pending[record.ID] = record
	}
}
