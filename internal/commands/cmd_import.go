package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/taskpilot"
	"github.com/colonyops/taskpilot/pkg/iojson"
)

// ImportCmd implements the taskpilot import command.
type ImportCmd struct {
	flags *Flags
	app   *taskpilot.App
	fr    *iojson.FileReader[ImportInput]
}

// NewImportCmd creates a new import command.
func NewImportCmd(flags *Flags, app *taskpilot.App) *ImportCmd {
	return &ImportCmd{
		flags: flags,
		app:   app,
		fr:    &iojson.FileReader[ImportInput]{},
	}
}

// Register adds the import command to the application.
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "import",
		Usage: "Create multiple tasks from JSON input",
		UsageText: `taskpilot import [options]

Read from stdin:
  echo '{"tasks":[{"title":"Pay rent","priority":"high"}]}' | taskpilot import

Read from file:
  taskpilot import -f tasks.json`,
		Description: `Creates tasks from a JSON document in one transaction. If any task is
invalid nothing is created.

Input JSON schema:
  {
    "tasks": [
      {
        "title": "Pay rent",
        "description": "optional",
        "priority": "low|medium|high",
        "due": "tomorrow | next friday | 2026-12-01",
        "tags": ["home", "bills"]
      }
    ]
  }

Output is JSON lines, one per created task.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer

	input, err := cmd.fr.Read()
	if err != nil {
		_ = iojson.WriteError(w, fmt.Sprintf("read input: %s", err), nil)
		return cli.Exit("", 1)
	}

	now := time.Now()
	if err := input.Validate(now); err != nil {
		_ = iojson.WriteError(w, "invalid input", map[string]any{"errors": err.Error()})
		return cli.Exit("", 1)
	}

	created, err := cmd.app.Tasks.Import(ctx, cmd.flags.OwnerID(), input.toNewTasks(now))
	if err != nil {
		_ = iojson.WriteError(w, fmt.Sprintf("import tasks: %s", err), nil)
		return cli.Exit("", 1)
	}

	for _, t := range created {
		if err := iojson.WriteLine(w, t); err != nil {
			return err
		}
	}
	return nil
}

// ImportInput is the JSON input schema for task import.
type ImportInput struct {
	Tasks []ImportTask `json:"tasks"`
}

// ImportTask defines a single task to create.
type ImportTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Due         string   `json:"due,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks the import input for errors using criterio. Due phrases
// are resolved against now.
func (in ImportInput) Validate(now time.Time) error {
	if len(in.Tasks) == 0 {
		return criterio.NewFieldErrors("tasks", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, t := range in.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)

		if strings.TrimSpace(t.Title) == "" {
			errs = errs.Append(field+".title", task.ErrInvalidTitle)
		}
		if t.Priority != "" {
			if _, ok := task.ParsePriority(t.Priority); !ok {
				errs = errs.Append(field+".priority", fmt.Errorf("unknown priority %q", t.Priority))
			}
		}
		if t.Due != "" {
			if _, err := parseDue(t.Due, now); err != nil {
				errs = errs.Append(field+".due", err)
			}
		}
	}

	return errs.ToError()
}

func (in ImportInput) toNewTasks(now time.Time) []taskpilot.NewTask {
	out := make([]taskpilot.NewTask, len(in.Tasks))
	for i, t := range in.Tasks {
		nt := taskpilot.NewTask{
			Title:       t.Title,
			Description: t.Description,
			Tags:        t.Tags,
		}
		if p, ok := task.ParsePriority(t.Priority); ok {
			nt.Priority = p
		}
		if t.Due != "" {
			if due, err := parseDue(t.Due, now); err == nil {
				nt.DueDate = &due
			}
		}
		out[i] = nt
	}
	return out
}
