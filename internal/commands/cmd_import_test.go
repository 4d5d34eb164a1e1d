package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/task"
)

var importNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local)

func TestImportInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		input  ImportInput
		fields []string
	}{
		{
			name:  "valid",
			input: ImportInput{Tasks: []ImportTask{{Title: "Pay rent", Priority: "HIGH", Due: "tomorrow"}}},
		},
		{
			name:   "empty",
			input:  ImportInput{},
			fields: []string{"tasks"},
		},
		{
			name: "bad fields",
			input: ImportInput{Tasks: []ImportTask{
				{Title: "ok"},
				{Title: " ", Priority: "urgent", Due: "someday"},
			}},
			fields: []string{"tasks[1].title", "tasks[1].priority", "tasks[1].due"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate(importNow)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			got := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestImportInput_ToNewTasks(t *testing.T) {
	in := ImportInput{Tasks: []ImportTask{
		{Title: "Pay rent", Priority: "high", Due: "2026-11-01", Tags: []string{"bills"}},
		{Title: "Water plants"},
	}}

	got := in.toNewTasks(importNow)
	require.Len(t, got, 2)

	assert.Equal(t, task.PriorityHigh, got[0].Priority)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.Local), *got[0].DueDate)
	assert.Equal(t, []string{"bills"}, got[0].Tags)

	assert.Equal(t, task.Priority(""), got[1].Priority)
	assert.Nil(t, got[1].DueDate)
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("tomorrow", importNow)
	require.NoError(t, err)
	assert.Equal(t, importNow.AddDate(0, 0, 1), due)

	due, err = parseDue("2026-12-24", importNow)
	require.NoError(t, err)
	assert.Equal(t, 24, due.Day())

	_, err = parseDue("whenever", importNow)
	require.Error(t, err)
}
