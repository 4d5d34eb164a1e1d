package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskpilot/internal/core/dates"
	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/taskpilot"
	"github.com/colonyops/taskpilot/pkg/iojson"
)

// TaskCmd implements the taskpilot task command group.
type TaskCmd struct {
	flags *Flags
	app   *taskpilot.App

	// list flags
	listTag      string
	listStatus   string
	listPriority string

	// add flags
	addDescription string
	addPriority    string
	addDue         string
	addTags        []string

	// complete flags
	completeUndo bool
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *taskpilot.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

func (cmd *TaskCmd) tasks() *taskpilot.TaskService {
	return cmd.app.Tasks
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage tasks directly",
		Description: `Direct task edits. Tasks are referenced by id or by title; a title
reference resolves to the exact match first, then the first partial match.

Output is JSON lines.

Examples:
  taskpilot task list --tag 'proj-*'
  taskpilot task add "Pay rent" --priority high --due tomorrow
  taskpilot task complete "pay rent"
  taskpilot task tag "Pay rent" home bills
  taskpilot task subtask add "Pay rent" "find checkbook"`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.addCmd(),
			cmd.showCmd(),
			cmd.completeCmd(),
			cmd.deleteCmd(),
			cmd.tagCmd(),
			cmd.untagCmd(),
			cmd.subtaskCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "taskpilot task list [--tag <glob>] [--status <status>] [--priority <priority>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "only tasks with a tag matching this glob",
				Destination: &cmd.listTag,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "filter by status (open, completed)",
				Destination: &cmd.listStatus,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "filter by priority (low, medium, high)",
				Destination: &cmd.listPriority,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "taskpilot task add <title> [--priority <priority>] [--due <date>] [--tag <tag>]...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "optional description",
				Destination: &cmd.addDescription,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high); defaults to tasks.default_priority",
				Destination: &cmd.addPriority,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       `due date: a phrase like "tomorrow" or "next friday", or YYYY-MM-DD`,
				Destination: &cmd.addDue,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "tag to attach (repeatable)",
				Destination: &cmd.addTags,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a task",
		UsageText: "taskpilot task show <id|title>",
		Action:    cmd.runShow,
	}
}

func (cmd *TaskCmd) completeCmd() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Aliases:   []string{"done"},
		Usage:     "Mark a task as complete",
		UsageText: "taskpilot task complete <id|title> [--undo]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "undo",
				Usage:       "mark the task as incomplete instead",
				Destination: &cmd.completeUndo,
			},
		},
		Action: cmd.runComplete,
	}
}

func (cmd *TaskCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task",
		UsageText: "taskpilot task delete <id|title>",
		Action:    cmd.runDelete,
	}
}

func (cmd *TaskCmd) tagCmd() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Add tags to a task",
		UsageText: "taskpilot task tag <id|title> <tag>...",
		Action:    cmd.runTag,
	}
}

func (cmd *TaskCmd) untagCmd() *cli.Command {
	return &cli.Command{
		Name:      "untag",
		Usage:     "Remove tags from a task",
		UsageText: "taskpilot task untag <id|title> <tag>...",
		Action:    cmd.runUntag,
	}
}

func (cmd *TaskCmd) subtaskCmd() *cli.Command {
	return &cli.Command{
		Name:  "subtask",
		Usage: "Manage a task's subtasks",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append a subtask",
				UsageText: "taskpilot task subtask add <task> <title>",
				Action:    cmd.runSubtaskAdd,
			},
			{
				Name:      "toggle",
				Usage:     "Flip a subtask between complete and incomplete",
				UsageText: "taskpilot task subtask toggle <task> <subtask id|title>",
				Action:    cmd.runSubtaskToggle,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a subtask",
				UsageText: "taskpilot task subtask remove <task> <subtask id|title>",
				Action:    cmd.runSubtaskRemove,
			},
		},
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	filter := taskpilot.ListFilter{Tag: cmd.listTag}

	switch cmd.listStatus {
	case "":
	case "open":
		open := false
		filter.Completed = &open
	case "completed":
		done := true
		filter.Completed = &done
	default:
		return fmt.Errorf("invalid status %q: must be one of open, completed", cmd.listStatus)
	}

	if cmd.listPriority != "" {
		p, ok := task.ParsePriority(cmd.listPriority)
		if !ok {
			return fmt.Errorf("invalid priority %q: must be one of low, medium, high", cmd.listPriority)
		}
		filter.Priority = p
	}

	tasks, err := cmd.tasks().List(ctx, cmd.flags.OwnerID(), filter)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: taskpilot task add <title>")
	}

	in := taskpilot.NewTask{
		Title:       c.Args().Get(0),
		Description: cmd.addDescription,
		Tags:        cmd.addTags,
	}
	if cmd.addPriority != "" {
		p, ok := task.ParsePriority(cmd.addPriority)
		if !ok {
			return fmt.Errorf("invalid priority %q: must be one of low, medium, high", cmd.addPriority)
		}
		in.Priority = p
	}
	if cmd.addDue != "" {
		due, err := parseDue(cmd.addDue, time.Now())
		if err != nil {
			return err
		}
		in.DueDate = &due
	}

	t, err := cmd.tasks().Create(ctx, cmd.flags.OwnerID(), in)
	if err != nil {
		return err
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	t, err := cmd.find(ctx, c, "show")
	if err != nil {
		return err
	}
	return iojson.Write(c.Root().Writer, t)
}

func (cmd *TaskCmd) runComplete(ctx context.Context, c *cli.Command) error {
	t, err := cmd.find(ctx, c, "complete")
	if err != nil {
		return err
	}

	t, err = cmd.tasks().Complete(ctx, cmd.flags.OwnerID(), t.ID, !cmd.completeUndo)
	if err != nil {
		return err
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runDelete(ctx context.Context, c *cli.Command) error {
	t, err := cmd.find(ctx, c, "delete")
	if err != nil {
		return err
	}

	if err := cmd.tasks().Delete(ctx, cmd.flags.OwnerID(), t.ID); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TaskCmd) runTag(ctx context.Context, c *cli.Command) error {
	return cmd.editTags(ctx, c, "tag", cmd.tasks().AddTags)
}

func (cmd *TaskCmd) runUntag(ctx context.Context, c *cli.Command) error {
	return cmd.editTags(ctx, c, "untag", cmd.tasks().RemoveTags)
}

func (cmd *TaskCmd) editTags(
	ctx context.Context,
	c *cli.Command,
	name string,
	edit func(ctx context.Context, ownerID, id string, tags ...string) (task.Task, error),
) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: taskpilot task %s <id|title> <tag>...", name)
	}

	t, err := cmd.find(ctx, c, name)
	if err != nil {
		return err
	}

	t, err = edit(ctx, cmd.flags.OwnerID(), t.ID, c.Args().Slice()[1:]...)
	if err != nil {
		return err
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runSubtaskAdd(ctx context.Context, c *cli.Command) error {
	return cmd.editSubtask(ctx, c, "add", "title", cmd.tasks().AddSubtask)
}

func (cmd *TaskCmd) runSubtaskToggle(ctx context.Context, c *cli.Command) error {
	return cmd.editSubtask(ctx, c, "toggle", "subtask id|title", cmd.tasks().ToggleSubtask)
}

func (cmd *TaskCmd) runSubtaskRemove(ctx context.Context, c *cli.Command) error {
	return cmd.editSubtask(ctx, c, "remove", "subtask id|title", cmd.tasks().RemoveSubtask)
}

func (cmd *TaskCmd) editSubtask(
	ctx context.Context,
	c *cli.Command,
	name, argName string,
	edit func(ctx context.Context, ownerID, id, arg string) (task.Task, error),
) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: taskpilot task subtask %s <task> <%s>", name, argName)
	}

	t, err := cmd.find(ctx, c, "subtask "+name)
	if err != nil {
		return err
	}

	t, err = edit(ctx, cmd.flags.OwnerID(), t.ID, c.Args().Get(1))
	if err != nil {
		return err
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

// find resolves the first argument as a task id or title.
func (cmd *TaskCmd) find(ctx context.Context, c *cli.Command, name string) (task.Task, error) {
	if c.NArg() < 1 {
		return task.Task{}, fmt.Errorf("usage: taskpilot task %s <id|title>", name)
	}

	ref := c.Args().Get(0)
	t, err := cmd.tasks().Find(ctx, cmd.flags.OwnerID(), ref)
	if err != nil {
		return task.Task{}, fmt.Errorf("find task %q: %w", ref, err)
	}
	return t, nil
}

// parseDue accepts a date phrase or a YYYY-MM-DD date in local time.
func parseDue(s string, now time.Time) (time.Time, error) {
	if due, ok := dates.Resolve(s, now); ok {
		return due, nil
	}
	due, err := time.ParseInLocation(time.DateOnly, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: use a phrase like \"tomorrow\" or YYYY-MM-DD", s)
	}
	return due, nil
}
