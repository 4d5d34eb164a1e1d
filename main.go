package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskpilot/internal/commands"
	"github.com/colonyops/taskpilot/internal/core/config"
	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/logging"
	"github.com/colonyops/taskpilot/internal/data/db"
	"github.com/colonyops/taskpilot/internal/data/stores"
	"github.com/colonyops/taskpilot/internal/printer"
	"github.com/colonyops/taskpilot/internal/taskpilot"
	"github.com/colonyops/taskpilot/internal/taskpilot/sweep"
	"github.com/colonyops/taskpilot/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openDatabase opens the task database, moving a corrupted file aside and
// starting fresh when SQLite reports corruption.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, err
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupted, backing up and recreating")
	if recoverErr := stores.RecoverFromCorruption(cfg.DataDir); recoverErr != nil {
		return nil, errors.Join(err, recoverErr)
	}
	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		taskApp   = &taskpilot.App{}
		database  *db.DB
		bgCancel  context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskpilot",
		Usage:     "Manage tasks in plain language",
		UsageText: "taskpilot [global options] command [command options]",
		Description: `taskpilot is a personal task manager driven by plain-language commands.

Commands like "mark all tasks as complete" or "add tags work, urgent to all
tasks due next Monday" are interpreted, planned, and applied as one atomic
change. Tasks already in the requested state are left untouched.

Run 'taskpilot chat' to start a session, or 'taskpilot task' for direct edits.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKPILOT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("TASKPILOT_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKPILOT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKPILOT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "owner",
				Usage:       "owner id for task and transcript access (defaults to config owner)",
				Sources:     cli.EnvVars("TASKPILOT_OWNER"),
				Destination: &flags.Owner,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			taskStore := stores.NewTaskStore(database)
			chatStore := stores.NewChatStore(database)

			bgCtx, cancel := context.WithCancel(context.Background())
			bgCancel = cancel

			bus := eventbus.New(256)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			go bus.Start(bgCtx)

			go sweep.Start(bgCtx, chatStore, bus, cfg.Chat.Retention, cfg.Chat.SweepInterval)

			// Commands already hold a pointer to taskApp.
			*taskApp = *taskpilot.NewApp(
				cfg,
				database,
				taskStore,
				chatStore,
				bus,
				nil,
				logging.Component("taskpilot"),
			)

			return printer.NewContext(ctx, printer.New(c.Root().Writer)), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if bgCancel != nil {
				bgCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewChatCmd(flags, taskApp).Register(app)
	app = commands.NewTaskCmd(flags, taskApp).Register(app)
	app = commands.NewImportCmd(flags, taskApp).Register(app)
	app = commands.NewHistoryCmd(flags, taskApp).Register(app)
	app = commands.NewDBCmd(flags, taskApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
