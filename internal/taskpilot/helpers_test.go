package taskpilot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/data/db"
	"github.com/colonyops/taskpilot/internal/data/stores"
)

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

func fixedClock() time.Time { return testNow }

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func seed(t *testing.T, store task.Store, owner string, tasks ...task.Task) []task.Task {
	t.Helper()
	out := make([]task.Task, 0, len(tasks))
	for _, tk := range tasks {
		tk.OwnerID = owner
		require.NoError(t, store.Create(context.Background(), &tk))
		out = append(out, tk)
	}
	return out
}

// faultyStore wraps a real store and lets tests break individual calls.
type faultyStore struct {
	task.Store

	listErr error
	// poison is appended to every batch so the real store rejects it after
	// applying the writes before it.
	poison *task.Patch

	batches atomic.Int32
	adds    atomic.Int32
}

func (s *faultyStore) ListTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.ListTasks(ctx, ownerID)
}

func (s *faultyStore) ApplyBatch(ctx context.Context, ownerID string, batch task.Batch, stampedAt time.Time) error {
	s.batches.Add(1)
	if s.poison != nil {
		batch.Patches = append(batch.Patches, *s.poison)
	}
	return s.Store.ApplyBatch(ctx, ownerID, batch, stampedAt)
}

func (s *faultyStore) AddMany(ctx context.Context, ownerID string, tasks []task.Task, stampedAt time.Time) ([]task.Task, error) {
	s.adds.Add(1)
	return s.Store.AddMany(ctx, ownerID, tasks, stampedAt)
}

func newFaultyStore(t *testing.T) *faultyStore {
	t.Helper()
	return &faultyStore{Store: stores.NewTaskStore(openDB(t))}
}
