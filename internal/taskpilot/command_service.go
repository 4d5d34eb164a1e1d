package taskpilot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/feedback"
	"github.com/colonyops/taskpilot/internal/core/intent"
	"github.com/colonyops/taskpilot/internal/core/logging"
	"github.com/colonyops/taskpilot/internal/core/plan"
	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/pkg/kv"
)

// CommandService turns chat messages into task mutations and feedback text.
// Commands for the same conversation run one at a time.
type CommandService struct {
	tasks      task.Store
	transcript chat.Store
	classifier *intent.Classifier
	executor   *Executor
	bus        *eventbus.EventBus
	clock      func() time.Time
	locks      *kv.Store[string, *sync.Mutex]
	log        zerolog.Logger
}

// NewCommandService creates a CommandService. A nil clock uses time.Now.
func NewCommandService(
	tasks task.Store,
	transcript chat.Store,
	bus *eventbus.EventBus,
	clock func() time.Time,
	log zerolog.Logger,
) *CommandService {
	if clock == nil {
		clock = time.Now
	}
	return &CommandService{
		tasks:      tasks,
		transcript: transcript,
		classifier: intent.NewClassifier(),
		executor:   NewExecutor(tasks, clock),
		bus:        bus,
		clock:      clock,
		locks:      kv.New[string, *sync.Mutex](),
		log:        log.With().Str("component", "command-service").Logger(),
	}
}

// Process interprets one inbound message and returns the reply. It never
// fails: store errors become failure text and leave the tasks unchanged.
func (s *CommandService) Process(ctx context.Context, in chat.Inbound) string {
	mu := s.locks.GetOrCreate(in.ConversationID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	defer mu.Unlock()

	ctx = logging.WithOwnerID(ctx, in.OwnerID)
	ctx = logging.WithConversationID(ctx, in.ConversationID)

	out := s.run(ctx, in)

	// The transcript and the events are independent; both finish before the
	// reply is handed back.
	var g errgroup.Group
	g.Go(func() error {
		return s.record(ctx, in, out)
	})
	g.Go(func() error {
		s.publish(in, out)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to record transcript")
	}

	return out.reply
}

// outcome is what one command produced.
type outcome struct {
	reply   string
	matcher string
	result  Result
	failed  bool
}

func (s *CommandService) run(ctx context.Context, in chat.Inbound) outcome {
	if strings.TrimSpace(in.Text) == "" {
		return outcome{reply: feedback.NoAction}
	}

	snapshot, err := s.tasks.ListTasks(ctx, in.OwnerID)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to load task snapshot")
		return outcome{reply: feedback.Failure("load tasks", err), failed: true}
	}

	now := s.clock()
	match, err := s.classifier.Classify(in.Text, snapshot, now)
	if errors.Is(err, intent.ErrNoActionableIntent) {
		s.log.Debug().Ctx(ctx).
			Bool("has_prior_reply", in.PriorReply != "").
			Msg("no actionable intent")
		return outcome{reply: feedback.NoAction}
	}
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("classify command")
		return outcome{reply: feedback.NoAction}
	}

	p := plan.Build(match.Intent, snapshot)
	res, err := s.executor.Execute(ctx, in.OwnerID, p)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).
			Str("matcher", match.Matcher).
			Int("planned", p.Affected()).
			Msg("command failed")
		return outcome{reply: feedback.Failure(p.Verb, err), matcher: match.Matcher, failed: true}
	}

	s.log.Debug().Ctx(ctx).
		Str("matcher", match.Matcher).
		Int("affected", res.Affected).
		Msg("command processed")

	return outcome{
		reply:   feedback.Success(res.Affected, p.Action),
		matcher: match.Matcher,
		result:  res,
	}
}

func (s *CommandService) record(ctx context.Context, in chat.Inbound, out outcome) error {
	if s.transcript == nil {
		return nil
	}

	var msgs []chat.Message
	if strings.TrimSpace(in.Text) != "" {
		user := chat.Message{
			ConversationID: in.ConversationID,
			OwnerID:        in.OwnerID,
			Role:           chat.RoleUser,
			Content:        chat.TruncateContent(in.Text),
			Matcher:        out.matcher,
		}
		msgs = append(msgs, user)
	}
	msgs = append(msgs, chat.Message{
		ConversationID: in.ConversationID,
		OwnerID:        in.OwnerID,
		Role:           chat.RoleAssistant,
		Content:        out.reply,
		Matcher:        out.matcher,
	})

	return s.transcript.Append(ctx, msgs...)
}

func (s *CommandService) publish(in chat.Inbound, out outcome) {
	if s.bus == nil {
		return
	}

	if len(out.result.TaskIDs) > 0 {
		s.bus.PublishTasksChanged(eventbus.TasksChangedPayload{
			OwnerID: in.OwnerID,
			TaskIDs: out.result.TaskIDs,
		})
	}
	s.bus.PublishCommandProcessed(eventbus.CommandProcessedPayload{
		ConversationID: in.ConversationID,
		OwnerID:        in.OwnerID,
		Matcher:        out.matcher,
		Affected:       out.result.Affected,
		Failed:         out.failed,
	})
}
