package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
)

type TodoRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db, now: time.Now}
}

func (r *TodoRepository) CreateTodo(ctx context.Context, params domain.CreateTodoParams) (int64, error) {
	query := `
		INSERT INTO todos (owner_id, title, description, due_date, priority, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		params.OwnerID,
		params.Title,
		nullString(params.Description),
		nullString(params.DueDate),
		params.Priority,
		params.Recurring,
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, storeErr("create todo", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create todo", err)
	}
	return id, nil
}

// CompleteTodo marks one of the owner's todos done. A todo belonging to
// someone else is reported as not found.
func (r *TodoRepository) CompleteTodo(ctx context.Context, ownerID string, todoID int64, at time.Time) error {
	return withTx(ctx, r.db, "complete todo", func(tx *sql.Tx) error {
		var completed bool
		err := tx.QueryRowContext(ctx,
			`SELECT completed FROM todos WHERE todo_id = ? AND owner_id = ?`, todoID, ownerID,
		).Scan(&completed)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTodoNotFound
		}
		if err != nil {
			return storeErr("complete todo", err)
		}
		if completed {
			return domain.ErrTodoAlreadyDone
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE todos SET completed = 1, completed_at = ? WHERE todo_id = ?`,
			at.UTC().Format(time.RFC3339), todoID,
		)
		if err != nil {
			return storeErr("complete todo", err)
		}
		return nil
	})
}

// ListTodos orders by priority (highest first), then due date (undated last).
func (r *TodoRepository) ListTodos(ctx context.Context, ownerID string, includeCompleted bool) ([]*domain.Todo, error) {
	query := `
		SELECT todo_id, owner_id, title, description, due_date, priority, recurring, completed, completed_at, created_at
		FROM todos
		WHERE owner_id = ?
	`
	if !includeCompleted {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY priority DESC, due_date IS NULL, due_date ASC, todo_id ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("list todos", err)
	}
	defer rows.Close()

	todos := []*domain.Todo{}
	for rows.Next() {
		var t domain.Todo
		var description, dueDate, completedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &dueDate, &t.Priority,
			&t.Recurring, &t.Completed, &completedAt, &createdAt); err != nil {
			return nil, storeErr("list todos", err)
		}

		t.Description = stringPtr(description)
		t.DueDate = stringPtr(dueDate)
		t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, storeErr("list todos", fmt.Errorf("todo %d: %w", t.ID, err))
		}
		if completedAt.Valid {
			at, err := time.Parse(time.RFC3339, completedAt.String)
			if err != nil {
				return nil, storeErr("list todos", fmt.Errorf("todo %d: %w", t.ID, err))
			}
			t.CompletedAt = &at
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list todos", err)
	}
	return todos, nil
}

func (r *TodoRepository) ClearTodos(ctx context.Context, ownerID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, storeErr("clear todos", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("clear todos", err)
	}
	return int(n), nil
}

// ResetRecurring reopens every completed recurring todo, for all owners.
func (r *TodoRepository) ResetRecurring(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET completed = 0, completed_at = NULL WHERE recurring = 1 AND completed = 1`)
	if err != nil {
		return 0, storeErr("reset recurring todos", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("reset recurring todos", err)
	}
	return int(n), nil
}

// GetBoard returns nil, nil when the owner has no board.
func (r *TodoRepository) GetBoard(ctx context.Context, ownerID string) (*domain.TodoBoard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner_id, chat_id, message_id, updated_at FROM todo_boards WHERE owner_id = ?`, ownerID)

	var b domain.TodoBoard
	var updatedAt string
	err := row.Scan(&b.OwnerID, &b.ChatID, &b.MessageID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get board", err)
	}

	b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, storeErr("get board", err)
	}
	return &b, nil
}

func (r *TodoRepository) SaveBoard(ctx context.Context, board *domain.TodoBoard) error {
	query := `
		INSERT INTO todo_boards (owner_id, chat_id, message_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			chat_id = excluded.chat_id,
			message_id = excluded.message_id,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, board.OwnerID, board.ChatID, board.MessageID,
		board.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return storeErr("save board", err)
	}
	return nil
}
