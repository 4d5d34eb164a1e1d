package feedback

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/taskpilot/internal/core/task"
)

func TestSuccess(t *testing.T) {
	assert.Equal(t, "✅ 1 tasks marked as complete.", Success(1, "marked as complete"))
	assert.Equal(t, "✅ 3 tasks created.", Success(3, "created"))
	assert.Equal(t, "ℹ️ No tasks needed to be marked as complete.", Success(0, "marked as complete"))
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unavailable",
			err:  fmt.Errorf("apply batch: %w", task.ErrStoreUnavailable),
			want: "❌ Failed to delete tasks: task store unavailable.",
		},
		{
			name: "rejected",
			err:  task.ErrPartialWriteRejected,
			want: "❌ Failed to delete tasks: changes were rejected, nothing was saved.",
		},
		{
			name: "other",
			err:  errors.New("disk full."),
			want: "❌ Failed to delete tasks: disk full.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Failure("delete tasks", tt.err))
		})
	}
}
