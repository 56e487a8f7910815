package usecase

import (
	"context"

	"github.com/fardannozami/habit-bot/internal/domain"
)

type ComputeStreakUsecase struct {
	repo domain.HabitRepository
}

func NewComputeStreakUsecase(repo domain.HabitRepository) *ComputeStreakUsecase {
	return &ComputeStreakUsecase{repo: repo}
}

// Execute returns the current consecutive-period streak of one of ownerID's
// habits, ending at its most recent completion. It does not look at how long
// ago that completion was.
func (uc *ComputeStreakUsecase) Execute(ctx context.Context, ownerID string, habitID int64) (int, error) {
	habit, err := ownedHabit(ctx, uc.repo, ownerID, habitID)
	if err != nil {
		return 0, err
	}
	streak, _, err := uc.streakOf(ctx, habit)
	return streak, err
}

// ownedHabit loads a habit on behalf of ownerID. A habit owned by someone
// else is reported as domain.ErrHabitNotFound.
func ownedHabit(ctx context.Context, repo domain.HabitRepository, ownerID string, habitID int64) (*domain.Habit, error) {
	habit, err := repo.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != ownerID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

// streakOf also returns the most recent completed period, nil if none.
func (uc *ComputeStreakUsecase) streakOf(ctx context.Context, habit *domain.Habit) (int, *domain.Period, error) {
	completions, err := uc.repo.ListCompletions(ctx, habit.ID)
	if err != nil {
		return 0, nil, err
	}

	periods, err := domain.CompletionPeriods(habit.Frequency, completions)
	if err != nil {
		return 0, nil, err
	}
	if len(periods) == 0 {
		return 0, nil, nil
	}

	return domain.CalculateStreak(periods), &periods[0], nil
}
