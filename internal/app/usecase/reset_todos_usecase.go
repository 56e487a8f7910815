package usecase

import (
	"context"

	"github.com/fardannozami/habit-bot/internal/domain"
	"github.com/fardannozami/habit-bot/internal/logger"
	"github.com/fardannozami/habit-bot/internal/metrics"
)

type ResetTodosUsecase struct {
	repo    domain.TodoRepository
	metrics *metrics.Metrics
}

func NewResetTodosUsecase(repo domain.TodoRepository, m *metrics.Metrics) *ResetTodosUsecase {
	return &ResetTodosUsecase{repo: repo, metrics: m}
}

// Execute reopens every completed recurring todo.
func (uc *ResetTodosUsecase) Execute(ctx context.Context) (int, error) {
	n, err := uc.repo.ResetRecurring(ctx)
	if err != nil {
		return 0, err
	}
	uc.metrics.TodosReset(n)
	logger.Info("Recurring todos reset", "count", n)
	return n, nil
}
