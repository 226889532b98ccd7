// pkg/eventstore/eventstore_test.go
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// setupTestDB attempts to connect to a PostgreSQL database for testing.
// It skips the test if the connection cannot be established.
func setupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	pgUser := os.Getenv("PGUSER")
	pgPassword := os.Getenv("PGPASSWORD")
	pgHost := os.Getenv("PGHOST")
	pgPort := os.Getenv("PGPORT")
	pgDB := os.Getenv("PGDATABASE")

	if pgUser == "" {
		pgUser = "liftops"
	}
	if pgPassword == "" {
		pgPassword = "dev_password_change_in_prod"
	}
	if pgHost == "" {
		pgHost = "localhost"
	}
	if pgPort == "" {
		pgPort = "5432"
	}
	if pgDB == "" {
		pgDB = "liftops"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			aggregate_id UUID NOT NULL,
			aggregate_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data JSONB NOT NULL,
			metadata JSONB,
			version INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (aggregate_id, version)
		);
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

type testEvent struct {
	Message string `json:"message"`
}

func appendOne(t *testing.T, store *EventStore, aggregateID uuid.UUID, expectedVersion int) error {
	t.Helper()
	eventData, err := json.Marshal(testEvent{Message: "stock adjusted"})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return store.AppendEvents(context.Background(), aggregateID, "part", expectedVersion, []Event{
		{EventType: "TestEvent", EventData: eventData},
	})
}

func TestAppendAndLoadEvents(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	store := NewEventStore(db)

	aggregateID := uuid.New()
	for i := 0; i < 3; i++ {
		if err := appendOne(t, store, aggregateID, i); err != nil {
			t.Fatalf("AppendEvents failed at version %d: %v", i, err)
		}
	}

	events, err := store.LoadEvents(context.Background(), aggregateID, 0, 0)
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, event := range events {
		if event.Version != i+1 {
			t.Errorf("event %d has version %d, want %d", i, event.Version, i+1)
		}
	}

	version, err := store.GetCurrentVersion(context.Background(), aggregateID)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 3 {
		t.Errorf("expected current version 3, got %d", version)
	}
}

func TestAppendDetectsVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	store := NewEventStore(db)

	aggregateID := uuid.New()
	if err := appendOne(t, store, aggregateID, 0); err != nil {
		t.Fatalf("AppendEvents failed: %v", err)
	}

	// A stale writer expecting version 0 must lose.
	err := appendOne(t, store, aggregateID, 0)
	if err != ErrConcurrencyConflict {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
}

func TestAppendRejectsNegativeVersion(t *testing.T) {
	store := NewEventStore(nil)
	err := store.AppendEvents(context.Background(), uuid.New(), "part", -1, nil)
	if err != ErrInvalidVersion {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}
}

func BenchmarkAppendEvents(b *testing.B) {
	db := setupTestDB(b)
	defer db.Close()
	store := NewEventStore(db)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		aggregateID := uuid.New()
		eventData, _ := json.Marshal(testEvent{Message: fmt.Sprintf("event %d", i)})
		events := []Event{{EventType: "TestEvent", EventData: eventData}}
		b.StartTimer()

		if err := store.AppendEvents(context.Background(), aggregateID, "part", 0, events); err != nil {
			b.Fatalf("AppendEvents failed: %v", err)
		}
	}
}
