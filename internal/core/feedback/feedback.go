// Package feedback renders the single line of text returned to the chat
// participant after a command.
package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/taskpilot/internal/core/task"
)

// NoAction is the reply when a message carries no task command.
const NoAction = "No action taken."

// Success reports n affected tasks. A count of zero renders the no-op text.
func Success(n int, action string) string {
	if n == 0 {
		return NoOp(action)
	}
	return fmt.Sprintf("✅ %d tasks %s.", n, action)
}

// NoOp reports that every task in scope already matched.
func NoOp(action string) string {
	return fmt.Sprintf("ℹ️ No tasks needed to be %s.", action)
}

// Failure reports a command that changed nothing.
func Failure(verb string, err error) string {
	return fmt.Sprintf("❌ Failed to %s: %s.", verb, Reason(err))
}

// Reason maps an error onto the short phrase used in failure text.
func Reason(err error) string {
	switch {
	case err == nil:
		return "unknown error"
	case errors.Is(err, task.ErrStoreUnavailable):
		return "task store unavailable"
	case errors.Is(err, task.ErrPartialWriteRejected):
		return "changes were rejected, nothing was saved"
	case errors.Is(err, task.ErrNotFound):
		return "task not found"
	default:
		return strings.TrimRight(err.Error(), ".")
	}
}
