package db

import "database/sql"

// Task is a row of the tasks table. Tags and Subtasks hold JSON arrays;
// timestamps are unix nanoseconds.
type Task struct {
	ID             string
	OwnerID        string
	Title          string
	Description    string
	Completed      bool
	Priority       string
	DueDate        sql.NullInt64
	Tags           string
	Subtasks       string
	CreatedAt      int64
	LastModifiedAt int64
}

// ChatMessage is a row of the chat_messages table.
type ChatMessage struct {
	ID             string
	ConversationID string
	OwnerID        string
	Role           string
	Content        string
	Matcher        string
	CreatedAt      int64
}
