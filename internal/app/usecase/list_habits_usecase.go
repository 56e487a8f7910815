package usecase

import (
	"context"

	"github.com/fardannozami/habit-bot/internal/domain"
)

type HabitSummary struct {
	Habit  *domain.Habit
	Streak int
	// LastPeriod is the most recent completed period, nil if never completed.
	LastPeriod *domain.Period
}

type ListHabitsUsecase struct {
	repo    domain.HabitRepository
	streaks *ComputeStreakUsecase
}

func NewListHabitsUsecase(repo domain.HabitRepository) *ListHabitsUsecase {
	return &ListHabitsUsecase{repo: repo, streaks: NewComputeStreakUsecase(repo)}
}

// Execute lists the owner's habits oldest first, each with its streak.
func (uc *ListHabitsUsecase) Execute(ctx context.Context, ownerID string) ([]HabitSummary, error) {
	habits, err := uc.repo.ListHabits(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]HabitSummary, 0, len(habits))
	for _, h := range habits {
		streak, last, err := uc.streaks.streakOf(ctx, h)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, HabitSummary{Habit: h, Streak: streak, LastPeriod: last})
	}
	return summaries, nil
}
