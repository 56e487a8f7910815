package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/habit-bot/internal/app/usecase"
	"github.com/fardannozami/habit-bot/internal/domain"
)

// =============================================================================
// STREAK LOGIC TESTS
// =============================================================================
//
// Streak Rules:
// 1. First completion ever → Streak = 1
// 2. Completion in the next period → Streak++
// 3. Skipped period then completion → Streak resets to 1
// 4. Second completion in the same period → Rejected, nothing written
//
// =============================================================================

func day(n int) time.Time {
	return time.Date(2026, 10, 18+n, 20, 0, 0, 0, time.UTC)
}

func addHabit(t *testing.T, repo domain.HabitRepository, owner, name string, f domain.Frequency) int64 {
	t.Helper()
	id, err := repo.CreateHabit(context.Background(), domain.CreateHabitParams{OwnerID: owner, Name: name, Frequency: f})
	require.NoError(t, err)
	return id
}

func TestRecordCompletion_ReadScenario(t *testing.T) {
	repo := newMockHabitRepo()
	uc := usecase.NewRecordCompletionUsecase(repo, time.UTC, nil)
	ctx := context.Background()
	id := addHabit(t, repo, "U1", "Read", domain.FrequencyDaily)

	res, err := uc.Execute(ctx, "U1", id, day(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, "2026-10-19", res.Period.Key())

	_, err = uc.Execute(ctx, "U1", id, day(1).Add(time.Hour))
	if !errors.Is(err, domain.ErrCompletionRejected) {
		t.Fatalf("Same day: expected ErrCompletionRejected, got %v", err)
	}

	res, err = uc.Execute(ctx, "U1", id, day(2))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)

	// day 3 skipped
	res, err = uc.Execute(ctx, "U1", id, day(4))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak, "gap should break the chain")
}

func TestRecordCompletion_SamePeriod_LeavesOneCompletion(t *testing.T) {
	for _, f := range []domain.Frequency{domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly} {
		t.Run(string(f), func(t *testing.T) {
			repo := newMockHabitRepo()
			uc := usecase.NewRecordCompletionUsecase(repo, time.UTC, nil)
			ctx := context.Background()
			id := addHabit(t, repo, "U1", "Habit", f)

			_, err := uc.Execute(ctx, "U1", id, day(1))
			require.NoError(t, err)

			_, err = uc.Execute(ctx, "U1", id, day(1).Add(2*time.Hour))
			assert.ErrorIs(t, err, domain.ErrCompletionRejected)
			assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

			completions, err := repo.ListCompletions(ctx, id)
			require.NoError(t, err)
			assert.Len(t, completions, 1)
		})
	}
}

func TestRecordCompletion_Weekly(t *testing.T) {
	repo := newMockHabitRepo()
	uc := usecase.NewRecordCompletionUsecase(repo, time.UTC, nil)
	ctx := context.Background()
	id := addHabit(t, repo, "U1", "Gym", domain.FrequencyWeekly)

	// Monday 19 Oct, then Sunday 25 Oct (same ISO week), then Monday 26 Oct
	_, err := uc.Execute(ctx, "U1", id, day(1))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, "U1", id, day(7))
	assert.ErrorIs(t, err, domain.ErrCompletionRejected)

	res, err := uc.Execute(ctx, "U1", id, day(8))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
	assert.Equal(t, "2026-W44", res.Period.Key())
}

func TestRecordCompletion_UsesConfiguredZone(t *testing.T) {
	repo := newMockHabitRepo()
	wib := time.FixedZone("WIB", 7*60*60)
	uc := usecase.NewRecordCompletionUsecase(repo, wib, nil)
	ctx := context.Background()
	id := addHabit(t, repo, "U1", "Read", domain.FrequencyDaily)

	// 20:00 UTC on the 19th is already the 20th in UTC+7
	res, err := uc.Execute(ctx, "U1", id, day(1))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", res.Period.Key())
}

func TestRecordCompletion_NotFound(t *testing.T) {
	repo := newMockHabitRepo()
	uc := usecase.NewRecordCompletionUsecase(repo, time.UTC, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, "U1", 404, day(1))
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)

	// Another owner's habit looks the same as a missing one
	id := addHabit(t, repo, "U2", "Read", domain.FrequencyDaily)
	_, err = uc.Execute(ctx, "U1", id, day(1))
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)

	completions, err := repo.ListCompletions(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, completions, "rejected attempt must not write")
}

func TestRecordCompletion_StoreErrorPropagates(t *testing.T) {
	repo := newMockHabitRepo()
	uc := usecase.NewRecordCompletionUsecase(repo, time.UTC, nil)
	id := addHabit(t, repo, "U1", "Read", domain.FrequencyDaily)

	repo.failWith = &domain.StoreError{Op: "get habit", Err: errDiskFull}
	_, err := uc.Execute(context.Background(), "U1", id, day(1))

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, errDiskFull)
	assert.NotErrorIs(t, err, domain.ErrCompletionRejected)
}

func TestComputeStreak(t *testing.T) {
	repo := newMockHabitRepo()
	uc := usecase.NewComputeStreakUsecase(repo)
	ctx := context.Background()

	id := addHabit(t, repo, "U1", "Read", domain.FrequencyDaily)
	streak, err := uc.Execute(ctx, "U1", id)
	require.NoError(t, err)
	assert.Equal(t, 0, streak, "no completions")

	for _, n := range []int{1, 2, 3} {
		_, err := repo.InsertCompletion(ctx, id, day(n).Format("2006-01-02"), day(n))
		require.NoError(t, err)
	}
	streak, err = uc.Execute(ctx, "U1", id)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	gapped := addHabit(t, repo, "U1", "Gapped", domain.FrequencyDaily)
	for _, n := range []int{0, 1, 3} {
		_, err := repo.InsertCompletion(ctx, gapped, day(n).Format("2006-01-02"), day(n))
		require.NoError(t, err)
	}
	streak, err = uc.Execute(ctx, "U1", gapped)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	_, err = uc.Execute(ctx, "U1", 999)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)

	// Another owner's habit is not found, same as for completions
	_, err = uc.Execute(ctx, "U2", id)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestListHabits_WithStreaks(t *testing.T) {
	repo := newMockHabitRepo()
	ctx := context.Background()

	read := addHabit(t, repo, "U1", "Read", domain.FrequencyDaily)
	addHabit(t, repo, "U1", "Gym", domain.FrequencyWeekly)
	addHabit(t, repo, "U2", "Other", domain.FrequencyDaily)

	for _, n := range []int{1, 2} {
		_, err := repo.InsertCompletion(ctx, read, day(n).Format("2006-01-02"), day(n))
		require.NoError(t, err)
	}

	summaries, err := usecase.NewListHabitsUsecase(repo).Execute(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Read", summaries[0].Habit.Name)
	assert.Equal(t, 2, summaries[0].Streak)
	require.NotNil(t, summaries[0].LastPeriod)
	assert.Equal(t, "2026-10-20", summaries[0].LastPeriod.Key())

	assert.Equal(t, "Gym", summaries[1].Habit.Name)
	assert.Equal(t, 0, summaries[1].Streak)
	assert.Nil(t, summaries[1].LastPeriod)
}
