package state

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreTracksSeenIDs(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "seen.db"), "", 0)
	if err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seen, err := store.HasSeen(context.Background(), "abc")
	if err != nil {
		t.Fatalf("has seen failed: %v", err)
	}
	if seen {
		t.Fatalf("expected unseen id")
	}

	if err := store.MarkSeen(context.Background(), "abc"); err != nil {
		t.Fatalf("mark seen failed: %v", err)
	}
	if err := store.MarkSeen(context.Background(), "abc"); err != nil {
		t.Fatalf("idempotent mark seen failed: %v", err)
	}

	seen, err = store.HasSeen(context.Background(), "abc")
	if err != nil {
		t.Fatalf("has seen failed: %v", err)
	}
	if !seen {
		t.Fatalf("expected seen id")
	}
}

func TestSQLiteStoreTrimsBeyondCap(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "seen.db"), "", 3)
	if err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for i := 0; i < 5; i++ {
		if err := store.MarkSeen(context.Background(), fmt.Sprintf("vid-%d", i)); err != nil {
			t.Fatalf("mark seen failed: %v", err)
		}
	}

	var kept int
	for i := 0; i < 5; i++ {
		seen, err := store.HasSeen(context.Background(), fmt.Sprintf("vid-%d", i))
		if err != nil {
			t.Fatalf("has seen failed: %v", err)
		}
		if seen {
			kept++
		}
	}
	if kept != 3 {
		t.Fatalf("expected 3 retained ids, got %d", kept)
	}
	seen, err := store.HasSeen(context.Background(), "vid-4")
	if err != nil {
		t.Fatalf("has seen failed: %v", err)
	}
	if !seen {
		t.Fatalf("expected newest id retained")
	}
}

func TestSQLiteStoreRejectsBadTableName(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "seen.db"), "bad name;", 0)
	if err == nil {
		t.Fatalf("expected table name validation error")
	}
}
