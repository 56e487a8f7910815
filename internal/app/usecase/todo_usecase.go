package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
	"github.com/fardannozami/habit-bot/internal/logger"
)

var ErrBoardUnavailable = errors.New("todo board is not available")

// BoardPublisher posts and edits the chat message that mirrors a todo list.
type BoardPublisher interface {
	PostBoard(ctx context.Context, chatID, text string) (messageID string, err error)
	EditBoard(ctx context.Context, chatID, messageID, text string) error
}

type TodoUsecase struct {
	repo      domain.TodoRepository
	publisher BoardPublisher
}

// NewTodoUsecase accepts a nil publisher, in which case boards are disabled.
func NewTodoUsecase(repo domain.TodoRepository, publisher BoardPublisher) *TodoUsecase {
	return &TodoUsecase{repo: repo, publisher: publisher}
}

func (uc *TodoUsecase) Add(ctx context.Context, params domain.CreateTodoParams) (int64, error) {
	id, err := uc.repo.CreateTodo(ctx, params)
	if err != nil {
		return 0, err
	}
	uc.refreshBoard(ctx, params.OwnerID)
	return id, nil
}

func (uc *TodoUsecase) Complete(ctx context.Context, ownerID string, todoID int64, now time.Time) error {
	if err := uc.repo.CompleteTodo(ctx, ownerID, todoID, now); err != nil {
		return err
	}
	uc.refreshBoard(ctx, ownerID)
	return nil
}

func (uc *TodoUsecase) List(ctx context.Context, ownerID string, includeCompleted bool) ([]*domain.Todo, error) {
	return uc.repo.ListTodos(ctx, ownerID, includeCompleted)
}

func (uc *TodoUsecase) Clear(ctx context.Context, ownerID string) (int, error) {
	n, err := uc.repo.ClearTodos(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	uc.refreshBoard(ctx, ownerID)
	return n, nil
}

// PostBoard sends a fresh board to chatID and remembers it for the owner,
// replacing any previous board.
func (uc *TodoUsecase) PostBoard(ctx context.Context, ownerID, chatID string, now time.Time) error {
	if uc.publisher == nil {
		return ErrBoardUnavailable
	}

	todos, err := uc.repo.ListTodos(ctx, ownerID, true)
	if err != nil {
		return err
	}

	messageID, err := uc.publisher.PostBoard(ctx, chatID, FormatTodoBoard(todos))
	if err != nil {
		return err
	}

	return uc.repo.SaveBoard(ctx, &domain.TodoBoard{
		OwnerID:   ownerID,
		ChatID:    chatID,
		MessageID: messageID,
		UpdatedAt: now,
	})
}

// refreshBoard re-renders the owner's board from the store. Failures only
// leave the board stale, so they are logged rather than returned.
func (uc *TodoUsecase) refreshBoard(ctx context.Context, ownerID string) {
	if uc.publisher == nil {
		return
	}

	board, err := uc.repo.GetBoard(ctx, ownerID)
	if err != nil {
		logger.Warn("Failed to load todo board", "owner", ownerID, "error", err)
		return
	}
	if board == nil {
		return
	}

	todos, err := uc.repo.ListTodos(ctx, ownerID, true)
	if err != nil {
		logger.Warn("Failed to list todos for board", "owner", ownerID, "error", err)
		return
	}

	if err := uc.publisher.EditBoard(ctx, board.ChatID, board.MessageID, FormatTodoBoard(todos)); err != nil {
		logger.Warn("Failed to edit todo board", "owner", ownerID, "message_id", board.MessageID, "error", err)
	}
}
