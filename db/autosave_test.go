package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingSaver collects saved records for assertions.
type recordingSaver struct {
	mu    sync.Mutex
	saved []SessionRecord
	fail  bool
}

func (s *recordingSaver) save(ctx context.Context, record SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("save failed")
	}
	s.saved = append(s.saved, record)
	return nil
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *recordingSaver) last() (SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return SessionRecord{}, false
	}
	return s.saved[len(s.saved)-1], true
}

func TestAutosaverCoalescesUpdates(t *testing.T) {
	saver := &recordingSaver{}
	auto := NewAutosaver(saver.save, 50*time.Millisecond, nil)
	auto.Start()
	defer auto.Stop(context.Background())

	// Rapid updates to the same session within the debounce window
	for i := 0; i < 10; i++ {
		auto.Queue(SessionRecord{ID: "s1", State: `{"rev":"draft"}`})
	}
	auto.Queue(SessionRecord{ID: "s1", State: `{"rev":"latest"}`})

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("autosaver never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if saver.count() != 1 {
		t.Errorf("save count = %d, want 1 (updates coalesced)", saver.count())
	}
	last, _ := saver.last()
	if last.State != `{"rev":"latest"}` {
		t.Errorf("saved state = %q, want the latest queued state", last.State)
	}
}

func TestAutosaverSeparateSessions(t *testing.T) {
	saver := &recordingSaver{}
	auto := NewAutosaver(saver.save, 30*time.Millisecond, nil)
	auto.Start()
	defer auto.Stop(context.Background())

	auto.Queue(SessionRecord{ID: "a", State: "{}"})
	auto.Queue(SessionRecord{ID: "b", State: "{}"})
	auto.Queue(SessionRecord{ID: "c", State: "{}"})

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 3 saves, got %d", saver.count())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if saver.count() != 3 {
		t.Errorf("save count = %d, want 3 (one per session)", saver.count())
	}
}

func TestAutosaverStopFlushesPending(t *testing.T) {
	saver := &recordingSaver{}
	// Long delay so the timer never fires on its own
	auto := NewAutosaver(saver.save, time.Hour, nil)
	auto.Start()

	auto.Queue(SessionRecord{ID: "s1", State: `{"pending":true}`})

	if err := auto.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if saver.count() != 1 {
		t.Errorf("save count = %d, want 1 (Stop must flush)", saver.count())
	}
	if auto.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0 after Stop", auto.PendingCount())
	}
}

func TestAutosaverQueueAfterStop(t *testing.T) {
	saver := &recordingSaver{}
	auto := NewAutosaver(saver.save, 10*time.Millisecond, nil)
	auto.Start()
	auto.Stop(context.Background())

	auto.Queue(SessionRecord{ID: "late", State: "{}"})
	time.Sleep(50 * time.Millisecond)

	if saver.count() != 0 {
		t.Errorf("save count = %d, want 0 (queue after stop is a no-op)", saver.count())
	}
}

func TestAutosaverFailedSaveStaysPending(t *testing.T) {
	saver := &recordingSaver{fail: true}

	var mu sync.Mutex
	var failedIDs []string
	onError := func(sessionID string, err error) {
		mu.Lock()
		failedIDs = append(failedIDs, sessionID)
		mu.Unlock()
	}

	auto := NewAutosaver(saver.save, time.Hour, onError)
	auto.Start()

	auto.Queue(SessionRecord{ID: "s1", State: "{}"})

	if err := auto.Flush(context.Background()); err == nil {
		t.Error("Flush() should report the save error")
	}

	mu.Lock()
	if len(failedIDs) != 1 || failedIDs[0] != "s1" {
		t.Errorf("failedIDs = %v, want [s1]", failedIDs)
	}
	mu.Unlock()

	// Record stays pending for retry
	if auto.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1 after failed flush", auto.PendingCount())
	}

	// Recovery: next flush succeeds
	saver.mu.Lock()
	saver.fail = false
	saver.mu.Unlock()

	if err := auto.Flush(context.Background()); err != nil {
		t.Errorf("Flush() after recovery error = %v", err)
	}
	if saver.count() != 1 {
		t.Errorf("save count = %d, want 1", saver.count())
	}

	auto.Stop(context.Background())
}

func TestAutosaverDefaultDelay(t *testing.T) {
	auto := NewAutosaver(func(ctx context.Context, r SessionRecord) error { return nil }, 0, nil)
	if auto.delay != DefaultAutosaveDelay {
		t.Errorf("delay = %v, want %v", auto.delay, DefaultAutosaveDelay)
	}
}

func TestAutosaverStopIdempotent(t *testing.T) {
	auto := NewAutosaver(func(ctx context.Context, r SessionRecord) error { return nil }, 10*time.Millisecond, nil)
	auto.Start()

	if err := auto.Stop(context.Background()); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := auto.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestAutosaverForget(t *testing.T) {
	saver := &recordingSaver{}
	auto := NewAutosaver(saver.save, time.Minute, nil)

	auto.Queue(SessionRecord{ID: "doomed", State: "{}"})
	auto.Queue(SessionRecord{ID: "kept", State: "{}"})
	auto.Forget("doomed")

	if got := auto.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}
	if err := auto.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := saver.count(); got != 1 {
		t.Fatalf("saved %d records, want 1", got)
	}
	if rec, _ := saver.last(); rec.ID != "kept" {
		t.Errorf("saved record = %q, want kept", rec.ID)
	}
}

func TestAutosaverForgetUnknownSession(t *testing.T) {
	auto := NewAutosaver((&recordingSaver{}).save, time.Minute, nil)
	auto.Forget("never-queued")

	if got := auto.PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d, want 0", got)
	}
}
