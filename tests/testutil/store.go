package testutil

import (
	"testing"

	"github.com/nhle/push-center/internal/store"
)

// NewTestKV creates an in-memory SQLite key-value store with all
// migrations applied. It is closed automatically when the test completes.
func NewTestKV(t *testing.T) *store.SQLiteKV {
	t.Helper()

	kv, err := store.NewSQLiteKV(":memory:")
	if err != nil {
		t.Fatalf("creating test kv store: %v", err)
	}

	t.Cleanup(func() {
		if err := kv.Close(); err != nil {
			t.Errorf("closing test kv store: %v", err)
		}
	})

	return kv
}

// NewTestInbox creates an Inbox over an in-memory mirror with the given
// capacity.
func NewTestInbox(t *testing.T, capacity int) *store.Inbox {
	t.Helper()
	return store.NewInbox(NewTestKV(t), capacity)
}
