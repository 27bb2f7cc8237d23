package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// insertHistoryAged inserts a history row with a created_at shifted into the past.
func insertHistoryAged(t *testing.T, database *Database, sessionID string, ageDays int) {
	t.Helper()

	query := `INSERT INTO session_history (session_id, state, created_at)
		VALUES (?, ?, datetime('now', ?))`
	offset := fmt.Sprintf("-%d days", ageDays)
	if _, err := database.Exec(query, sessionID, "{}", offset); err != nil {
		t.Fatalf("failed to insert aged history row: %v", err)
	}
}

func TestCleanupDeletesOldHistory(t *testing.T) {
	database := setupTestDatabase(t)
	repo := NewRepository(database, nil)
	ctx := context.Background()

	if err := repo.UpsertSession(ctx, SessionRecord{ID: "s1", State: "{}"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	insertHistoryAged(t, database, "s1", 60) // Past retention
	insertHistoryAged(t, database, "s1", 45) // Past retention
	insertHistoryAged(t, database, "s1", 5)  // Within retention

	result, err := database.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if result.HistoryDeleted != 2 {
		t.Errorf("HistoryDeleted = %d, want 2", result.HistoryDeleted)
	}
	if result.TotalDeleted != 2 {
		t.Errorf("TotalDeleted = %d, want 2", result.TotalDeleted)
	}
	if result.Duration <= 0 {
		t.Error("Duration should be positive")
	}

	remaining, err := repo.CountHistory(ctx)
	if err != nil {
		t.Fatalf("CountHistory() error = %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining history = %d, want 1", remaining)
	}
}

func TestCleanupKeepsSessions(t *testing.T) {
	database := setupTestDatabase(t)
	repo := NewRepository(database, nil)
	ctx := context.Background()

	// An old session must survive cleanup; only snapshots expire
	stmt := `INSERT INTO sessions (id, state, created_at, updated_at)
		VALUES (?, ?, datetime('now', '-365 days'), datetime('now', '-365 days'))`
	if _, err := database.Exec(stmt, "ancient", "{}"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := database.Cleanup(30); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if _, err := repo.GetSession(ctx, "ancient"); err != nil {
		t.Errorf("session should survive cleanup, got error: %v", err)
	}
}

func TestCleanupNegativeRetention(t *testing.T) {
	database := setupTestDatabase(t)

	if _, err := database.Cleanup(-1); err == nil {
		t.Error("Cleanup(-1) should return an error")
	}
}

func TestCleanupEmptyDatabase(t *testing.T) {
	database := setupTestDatabase(t)

	result, err := database.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if result.TotalDeleted != 0 {
		t.Errorf("TotalDeleted = %d, want 0", result.TotalDeleted)
	}
}

func TestCleanupWithCancelledContext(t *testing.T) {
	database := setupTestDatabase(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := database.CleanupWithContext(ctx, 30)
	if err == nil {
		t.Error("CleanupWithContext() with cancelled context should error")
	}
}

func TestCleanupClosedDatabase(t *testing.T) {
	database := setupTestDatabase(t)
	database.Close()

	if _, err := database.Cleanup(30); err == nil {
		t.Error("Cleanup() on closed database should error")
	}
}

func TestStartCleanupSchedulerRunsImmediately(t *testing.T) {
	database := setupTestDatabase(t)
	repo := NewRepository(database, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repo.UpsertSession(context.Background(), SessionRecord{ID: "s1", State: "{}"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	insertHistoryAged(t, database, "s1", 60)

	var mu sync.Mutex
	var results []CleanupResult
	config := CleanupSchedulerConfig{
		RetentionDays: 30,
		Interval:      time.Hour, // Only the immediate run matters here
		OnCleanup: func(result CleanupResult, err error) {
			if err != nil {
				t.Errorf("scheduled cleanup error: %v", err)
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		},
	}
	database.StartCleanupSchedulerWithConfig(ctx, config)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(results)
		mu.Unlock()
		if n >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not run initial cleanup")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if results[0].HistoryDeleted != 1 {
		t.Errorf("HistoryDeleted = %d, want 1", results[0].HistoryDeleted)
	}
}

func TestDefaultCleanupSchedulerConfig(t *testing.T) {
	config := DefaultCleanupSchedulerConfig()

	if config.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", config.RetentionDays)
	}
	if config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", config.Interval)
	}
}
