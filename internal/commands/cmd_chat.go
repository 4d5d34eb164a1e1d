package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/styles"
	"github.com/colonyops/taskpilot/internal/taskpilot"
)

// DefaultConversation is the conversation id used when --conversation is not set.
const DefaultConversation = "cli"

// ChatCmd implements the taskpilot chat command.
type ChatCmd struct {
	flags *Flags
	app   *taskpilot.App

	message      string
	conversation string
}

// NewChatCmd creates a new chat command.
func NewChatCmd(flags *Flags, app *taskpilot.App) *ChatCmd {
	return &ChatCmd{flags: flags, app: app}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Send task commands in plain language",
		UsageText: "taskpilot chat [--message <text>] [--conversation <id>]",
		Description: `Interprets plain-language task commands and applies them.

Without --message, reads one command per line from stdin. End a line with
a backslash to continue the command on the next line.

Examples:
  taskpilot chat --message "mark all tasks as complete"
  taskpilot chat --message "add tags work, urgent to all tasks due next Monday"
  taskpilot chat --message 'create high priority tasks: pay rent, water plants due tomorrow'
  echo 'delete all completed tasks' | taskpilot chat`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "process a single command and exit",
				Destination: &cmd.message,
			},
			&cli.StringFlag{
				Name:        "conversation",
				Usage:       "conversation id; commands in one conversation run in order",
				Value:       DefaultConversation,
				Destination: &cmd.conversation,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer
	prior := cmd.lastReply(ctx)

	if cmd.message != "" {
		cmd.send(ctx, w, cmd.message, prior)
		return nil
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return cmd.loop(ctx, os.Stdin, w, interactive, prior)
}

// loop reads commands from r and processes them in order. It returns when
// input ends or ctx is cancelled.
func (cmd *ChatCmd) loop(ctx context.Context, r io.Reader, w io.Writer, interactive bool, prior string) error {
	g, ctx := errgroup.WithContext(ctx)
	lines := make(chan string)
	ready := make(chan struct{}, 1)
	ready <- struct{}{}

	g.Go(func() error {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), chat.MaxContentSize)

		var pending []string
		for {
			if interactive {
				select {
				case <-ready:
				case <-ctx.Done():
					return nil
				}
				prompt := "› "
				if len(pending) > 0 {
					prompt = "… "
				}
				_, _ = fmt.Fprint(w, styles.PromptText.Render(prompt))
			}

			if !scanner.Scan() {
				break
			}

			line := scanner.Text()
			if strings.HasSuffix(line, `\`) {
				pending = append(pending, strings.TrimSuffix(line, `\`))
				if interactive {
					ready <- struct{}{}
				}
				continue
			}
			pending = append(pending, line)
			text := strings.Join(pending, "\n")
			pending = nil

			select {
			case lines <- text:
			case <-ctx.Done():
				return nil
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for text := range lines {
			if strings.TrimSpace(text) != "" {
				prior = cmd.send(ctx, w, text, prior)
			}
			if interactive {
				ready <- struct{}{}
			}
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (cmd *ChatCmd) send(ctx context.Context, w io.Writer, text, prior string) string {
	reply := cmd.app.Commands.Process(ctx, chat.Inbound{
		ConversationID: cmd.conversation,
		OwnerID:        cmd.flags.OwnerID(),
		Text:           text,
		PriorReply:     prior,
	})
	_, _ = fmt.Fprintln(w, styleReply(reply))
	return reply
}

// lastReply returns the most recent assistant message of the conversation.
func (cmd *ChatCmd) lastReply(ctx context.Context) string {
	msgs, err := cmd.app.Transcript.Recent(ctx, cmd.conversation, 2)
	if err != nil {
		log.Debug().Err(err).Msg("chat: load prior reply")
		return ""
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}

func styleReply(reply string) string {
	switch {
	case strings.HasPrefix(reply, "✅"):
		return styles.TextSuccess.Render(reply)
	case strings.HasPrefix(reply, "❌"):
		return styles.TextError.Render(reply)
	case strings.HasPrefix(reply, "ℹ️"):
		return styles.TextWarning.Render(reply)
	default:
		return styles.TextMuted.Render(reply)
	}
}
