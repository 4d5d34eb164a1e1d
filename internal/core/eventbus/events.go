// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskpilot.
package eventbus

// Event names a topic on the bus.
type Event string

// Keep list sorted A-Z
const (
	EventChatPruned       Event = "chat.pruned"
	EventCommandProcessed Event = "command.processed"
	EventTasksChanged     Event = "tasks.changed"
)

// Events lists every event with a zero payload, for tooling that needs to
// enumerate topics.
var Events = map[Event]any{
	EventChatPruned:       ChatPrunedPayload{},
	EventCommandProcessed: CommandProcessedPayload{},
	EventTasksChanged:     TasksChangedPayload{},
}

// TasksChangedPayload is emitted after a write to an owner's tasks commits.
type TasksChangedPayload struct {
	OwnerID string
	TaskIDs []string
}

// CommandProcessedPayload is emitted once per chat command, whether or not it
// changed anything.
type CommandProcessedPayload struct {
	ConversationID string
	OwnerID        string
	Matcher        string
	Affected       int
	Failed         bool
}

// ChatPrunedPayload is emitted when the retention sweep removes transcript
// messages.
type ChatPrunedPayload struct {
	Removed int
}

// PublishTasksChanged enqueues a tasks.changed event.
func (bus *EventBus) PublishTasksChanged(p TasksChangedPayload) {
	bus.send(EventTasksChanged, p)
}

// SubscribeTasksChanged registers fn for tasks.changed. The returned func
// removes the subscription.
func (bus *EventBus) SubscribeTasksChanged(fn func(TasksChangedPayload)) func() {
	return bus.subscribe(EventTasksChanged, func(p any) { fn(p.(TasksChangedPayload)) })
}

// PublishCommandProcessed enqueues a command.processed event.
func (bus *EventBus) PublishCommandProcessed(p CommandProcessedPayload) {
	bus.send(EventCommandProcessed, p)
}

// SubscribeCommandProcessed registers fn for command.processed.
func (bus *EventBus) SubscribeCommandProcessed(fn func(CommandProcessedPayload)) func() {
	return bus.subscribe(EventCommandProcessed, func(p any) { fn(p.(CommandProcessedPayload)) })
}

// PublishChatPruned enqueues a chat.pruned event.
func (bus *EventBus) PublishChatPruned(p ChatPrunedPayload) {
	bus.send(EventChatPruned, p)
}

// SubscribeChatPruned registers fn for chat.pruned.
func (bus *EventBus) SubscribeChatPruned(fn func(ChatPrunedPayload)) func() {
	return bus.subscribe(EventChatPruned, func(p any) { fn(p.(ChatPrunedPayload)) })
}
