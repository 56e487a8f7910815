package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
	"github.com/fardannozami/habit-bot/internal/metrics"
)

type StreakResult struct {
	Habit  *domain.Habit
	Period domain.Period
	Streak int
}

type RecordCompletionUsecase struct {
	repo    domain.HabitRepository
	streaks *ComputeStreakUsecase
	loc     *time.Location
	metrics *metrics.Metrics
}

// NewRecordCompletionUsecase derives period keys in loc; nil means UTC.
func NewRecordCompletionUsecase(repo domain.HabitRepository, loc *time.Location, m *metrics.Metrics) *RecordCompletionUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &RecordCompletionUsecase{
		repo:    repo,
		streaks: NewComputeStreakUsecase(repo),
		loc:     loc,
		metrics: m,
	}
}

// Execute records that ownerID did the habit at now. A habit owned by someone
// else is reported as not found. A second completion in the same period fails
// with domain.ErrCompletionRejected and writes nothing.
func (uc *RecordCompletionUsecase) Execute(ctx context.Context, ownerID string, habitID int64, now time.Time) (*StreakResult, error) {
	habit, err := ownedHabit(ctx, uc.repo, ownerID, habitID)
	if err != nil {
		return nil, err
	}

	period := domain.PeriodOf(now, habit.Frequency, uc.loc)

	if _, err := uc.repo.InsertCompletion(ctx, habit.ID, period.Key(), now); err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			uc.metrics.CompletionRecorded(string(habit.Frequency), "rejected")
			return nil, fmt.Errorf("%w: %w", domain.ErrCompletionRejected, err)
		}
		uc.metrics.CompletionRecorded(string(habit.Frequency), "error")
		return nil, err
	}
	uc.metrics.CompletionRecorded(string(habit.Frequency), "ok")

	streak, _, err := uc.streaks.streakOf(ctx, habit)
	if err != nil {
		return nil, err
	}

	return &StreakResult{Habit: habit, Period: period, Streak: streak}, nil
}
