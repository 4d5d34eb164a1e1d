package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/styles"
	"github.com/colonyops/taskpilot/internal/taskpilot"
	"github.com/colonyops/taskpilot/pkg/iojson"
)

// HistoryCmd implements the taskpilot history command.
type HistoryCmd struct {
	flags *Flags
	app   *taskpilot.App

	conversation string
	limit        int
	all          bool
	json         bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *taskpilot.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show the recent chat transcript",
		UsageText: "taskpilot history [--conversation <id>] [--limit <n>] [--all] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "conversation",
				Usage:       "conversation to show",
				Value:       DefaultConversation,
				Destination: &cmd.conversation,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of messages (defaults to chat.history_limit)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "show messages from every conversation of the owner",
				Destination: &cmd.all,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output JSON lines",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	limit := cmd.limit
	if limit <= 0 {
		limit = cmd.app.Config.Chat.HistoryLimit
	}

	var (
		msgs []chat.Message
		err  error
	)
	if cmd.all {
		msgs, err = cmd.app.Transcript.RecentByOwner(ctx, cmd.flags.OwnerID(), limit)
	} else {
		msgs, err = cmd.app.Transcript.Recent(ctx, cmd.conversation, limit)
	}
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	w := c.Root().Writer
	for _, m := range msgs {
		if cmd.json {
			if err := iojson.WriteLine(w, m); err != nil {
				return err
			}
			continue
		}

		stamp := styles.TextMuted.Render(m.CreatedAt.Format("2006-01-02 15:04"))
		switch m.Role {
		case chat.RoleUser:
			_, _ = fmt.Fprintf(w, "%s %s %s\n", stamp, styles.PromptText.Render("you"), m.Content)
		default:
			_, _ = fmt.Fprintf(w, "%s %s %s\n", stamp, styles.TextBold.Render("taskpilot"), styleReply(m.Content))
		}
	}
	return nil
}
