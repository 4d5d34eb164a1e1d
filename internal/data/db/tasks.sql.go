package db

import "context"

const taskColumns = `id, owner_id, title, description, completed, priority, due_date, tags, subtasks, created_at, last_modified_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.Priority,
		&t.DueDate,
		&t.Tags,
		&t.Subtasks,
		&t.CreatedAt,
		&t.LastModifiedAt,
	)
	return t, err
}

const listTasksByOwner = `SELECT ` + taskColumns + ` FROM tasks
WHERE owner_id = ?
ORDER BY created_at, rowid`

// ListTasksByOwner returns every task of ownerID in creation order.
func (q *Queries) ListTasksByOwner(ctx context.Context, ownerID string) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, listTasksByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getTask = `SELECT ` + taskColumns + ` FROM tasks
WHERE id = ? AND owner_id = ?`

type GetTaskParams struct {
	ID      string
	OwnerID string
}

// GetTask returns one task. Returns sql.ErrNoRows when absent.
func (q *Queries) GetTask(ctx context.Context, arg GetTaskParams) (Task, error) {
	return scanTask(q.db.QueryRowContext(ctx, getTask, arg.ID, arg.OwnerID))
}

const insertTask = `INSERT INTO tasks (` + taskColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTask writes a new row.
func (q *Queries) InsertTask(ctx context.Context, arg Task) error {
	_, err := q.db.ExecContext(ctx, insertTask,
		arg.ID,
		arg.OwnerID,
		arg.Title,
		arg.Description,
		arg.Completed,
		arg.Priority,
		arg.DueDate,
		arg.Tags,
		arg.Subtasks,
		arg.CreatedAt,
		arg.LastModifiedAt,
	)
	return err
}

const updateTask = `UPDATE tasks
SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?,
    tags = ?, subtasks = ?, last_modified_at = ?
WHERE id = ? AND owner_id = ?`

// UpdateTask rewrites the mutable columns of a row and returns the number
// of rows affected.
func (q *Queries) UpdateTask(ctx context.Context, arg Task) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTask,
		arg.Title,
		arg.Description,
		arg.Completed,
		arg.Priority,
		arg.DueDate,
		arg.Tags,
		arg.Subtasks,
		arg.LastModifiedAt,
		arg.ID,
		arg.OwnerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTask = `DELETE FROM tasks WHERE id = ? AND owner_id = ?`

type DeleteTaskParams struct {
	ID      string
	OwnerID string
}

// DeleteTask removes a row and returns the number of rows affected.
func (q *Queries) DeleteTask(ctx context.Context, arg DeleteTaskParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTask, arg.ID, arg.OwnerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
