package taskpilot

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/taskpilot/internal/core/plan"
	"github.com/colonyops/taskpilot/internal/core/task"
)

// Result describes a committed plan.
type Result struct {
	Affected  int
	Titles    []string
	TaskIDs   []string
	StampedAt time.Time
}

// Executor submits plans to the task store as one atomic batch.
type Executor struct {
	store task.Store
	clock func() time.Time
}

// NewExecutor creates an Executor. A nil clock uses time.Now.
func NewExecutor(store task.Store, clock func() time.Time) *Executor {
	if clock == nil {
		clock = time.Now
	}
	return &Executor{store: store, clock: clock}
}

// Execute applies p for ownerID. Every written task carries the same stamp.
// An empty plan makes no store call.
func (e *Executor) Execute(ctx context.Context, ownerID string, p plan.Plan) (Result, error) {
	if p.Empty() {
		return Result{}, nil
	}

	stamp := e.clock()
	res := Result{
		Affected:  p.Affected(),
		Titles:    p.Titles,
		StampedAt: stamp,
	}

	// Create-only plans go through AddMany so the new IDs come back.
	if len(p.Patches) == 0 && len(p.Deletes) == 0 {
		created, err := e.store.AddMany(ctx, ownerID, p.Creates, stamp)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", p.Verb, err)
		}
		for _, t := range created {
			res.TaskIDs = append(res.TaskIDs, t.ID)
		}
		return res, nil
	}

	if err := e.store.ApplyBatch(ctx, ownerID, p.Batch(), stamp); err != nil {
		return Result{}, fmt.Errorf("%s: %w", p.Verb, err)
	}
	for _, patch := range p.Patches {
		res.TaskIDs = append(res.TaskIDs, patch.TaskID)
	}
	res.TaskIDs = append(res.TaskIDs, p.Deletes...)
	return res, nil
}
