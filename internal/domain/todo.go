package domain

import (
	"context"
	"time"
)

const (
	MinPriority = 0
	MaxPriority = 5

	// DueDateLayout is the only accepted due date format.
	DueDateLayout = "2006-01-02"
)

type Todo struct {
	ID          int64      `json:"todo_id" db:"todo_id"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	DueDate     *string    `json:"due_date,omitempty" db:"due_date"`
	Priority    int        `json:"priority" db:"priority"`
	Recurring   bool       `json:"recurring" db:"recurring"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type CreateTodoParams struct {
	OwnerID     string
	Title       string
	Description *string
	DueDate     *string
	Priority    int
	Recurring   bool
}

// TodoBoard points at a chat message that mirrors an owner's todo list.
type TodoBoard struct {
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ChatID    string    `json:"chat_id" db:"chat_id"`
	MessageID string    `json:"message_id" db:"message_id"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TodoRepository interface {
	CreateTodo(ctx context.Context, params CreateTodoParams) (int64, error)
	CompleteTodo(ctx context.Context, ownerID string, todoID int64, at time.Time) error
	ListTodos(ctx context.Context, ownerID string, includeCompleted bool) ([]*Todo, error)
	ClearTodos(ctx context.Context, ownerID string) (int, error)
	ResetRecurring(ctx context.Context) (int, error)
	GetBoard(ctx context.Context, ownerID string) (*TodoBoard, error)
	SaveBoard(ctx context.Context, board *TodoBoard) error
}
