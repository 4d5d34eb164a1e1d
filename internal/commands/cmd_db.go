package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskpilot/internal/data/db"
	"github.com/colonyops/taskpilot/internal/printer"
	"github.com/colonyops/taskpilot/internal/taskpilot"
)

// DBCmd implements the taskpilot db command group.
type DBCmd struct {
	flags *Flags
	app   *taskpilot.App

	steps int
}

// NewDBCmd creates a new db command.
func NewDBCmd(flags *Flags, app *taskpilot.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application.
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Database maintenance commands",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "List schema migrations and whether they are applied",
				UsageText: "taskpilot db status",
				Action:    cmd.runStatus,
			},
			{
				Name:      "rollback",
				Usage:     "Revert the most recent schema migrations",
				UsageText: "taskpilot db rollback [--steps <n>]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
				},
				Action: cmd.runRollback,
			},
		},
	})

	return app
}

func (cmd *DBCmd) runStatus(ctx context.Context, c *cli.Command) error {
	states, err := db.Status(ctx, cmd.app.DB.Conn())
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}

	p := printer.Ctx(ctx)
	for _, s := range states {
		if s.Applied {
			p.Successf("%04d %s (applied %s)", s.Version, s.Name, s.AppliedAt.Format(time.DateTime))
		} else {
			p.Infof("%04d %s (pending)", s.Version, s.Name)
		}
	}
	return nil
}

func (cmd *DBCmd) runRollback(ctx context.Context, c *cli.Command) error {
	if cmd.steps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}

	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), cmd.steps); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	printer.Ctx(ctx).Successf("reverted %d migration(s); the next run re-applies them", cmd.steps)
	return nil
}
