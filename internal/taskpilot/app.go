// Package taskpilot wires the task store, the command interpreter, and the
// direct task service into the application the CLI consumes.
package taskpilot

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/config"
	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/data/db"
)

// App is the central entry point for all taskpilot operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Commands   *CommandService
	Tasks      *TaskService
	Transcript chat.Store

	Bus    *eventbus.EventBus
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies. A nil clock uses
// time.Now.
func NewApp(
	cfg *config.Config,
	database *db.DB,
	tasks task.Store,
	transcript chat.Store,
	bus *eventbus.EventBus,
	clock func() time.Time,
	log zerolog.Logger,
) *App {
	return &App{
		Commands:   NewCommandService(tasks, transcript, bus, clock, log),
		Tasks:      NewTaskService(tasks, bus, cfg.Tasks.DefaultPriority, log),
		Transcript: transcript,
		Bus:        bus,
		Config:     cfg,
		DB:         database,
	}
}
