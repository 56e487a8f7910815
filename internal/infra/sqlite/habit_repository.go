package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
)

type HabitRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewHabitRepository(db *sql.DB) *HabitRepository {
	return &HabitRepository{db: db, now: time.Now}
}

const habitColumns = `habit_id, owner_id, name, frequency, description, reminder_time, created_at`

func (r *HabitRepository) CreateHabit(ctx context.Context, params domain.CreateHabitParams) (int64, error) {
	query := `
		INSERT INTO habits (owner_id, name, frequency, description, reminder_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, name) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		params.OwnerID,
		params.Name,
		string(params.Frequency),
		nullString(params.Description),
		nullString(params.ReminderTime),
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, storeErr("create habit", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("create habit", err)
	}
	if n == 0 {
		return 0, domain.ErrDuplicateHabit
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create habit", err)
	}
	return id, nil
}

func (r *HabitRepository) GetHabit(ctx context.Context, habitID int64) (*domain.Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE habit_id = ?`, habitID)

	habit, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, storeErr("get habit", err)
	}
	return habit, nil
}

// ListHabits returns the owner's habits oldest first.
func (r *HabitRepository) ListHabits(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = ? ORDER BY created_at, habit_id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("list habits", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, storeErr("list habits", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list habits", err)
	}
	return habits, nil
}

// InsertCompletion records a completion for the given period. The UNIQUE
// (habit_id, period_key) constraint decides between concurrent callers.
func (r *HabitRepository) InsertCompletion(ctx context.Context, habitID int64, periodKey string, at time.Time) (*domain.Completion, error) {
	completion := &domain.Completion{
		HabitID:     habitID,
		PeriodKey:   periodKey,
		CompletedAt: at.UTC().Truncate(time.Second),
	}

	err := withTx(ctx, r.db, "insert completion", func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM habits WHERE habit_id = ?`, habitID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrHabitNotFound
		}
		if err != nil {
			return storeErr("insert completion", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO habit_completions (habit_id, period_key, completed_at)
			VALUES (?, ?, ?)
			ON CONFLICT (habit_id, period_key) DO NOTHING
		`, habitID, periodKey, completion.CompletedAt.Format(time.RFC3339))
		if err != nil {
			return storeErr("insert completion", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("insert completion", err)
		}
		if n == 0 {
			return domain.ErrAlreadyCompleted
		}

		completion.ID, err = res.LastInsertId()
		if err != nil {
			return storeErr("insert completion", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// ListCompletions returns the habit's completions most recent first.
func (r *HabitRepository) ListCompletions(ctx context.Context, habitID int64) ([]*domain.Completion, error) {
	query := `
		SELECT completion_id, habit_id, period_key, completed_at
		FROM habit_completions
		WHERE habit_id = ?
		ORDER BY completed_at DESC, completion_id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, habitID)
	if err != nil {
		return nil, storeErr("list completions", err)
	}
	defer rows.Close()

	completions := []*domain.Completion{}
	for rows.Next() {
		var c domain.Completion
		var completedAt string
		if err := rows.Scan(&c.ID, &c.HabitID, &c.PeriodKey, &completedAt); err != nil {
			return nil, storeErr("list completions", err)
		}
		c.CompletedAt, err = time.Parse(time.RFC3339, completedAt)
		if err != nil {
			return nil, storeErr("list completions", fmt.Errorf("completion %d: %w", c.ID, err))
		}
		completions = append(completions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list completions", err)
	}
	return completions, nil
}

// ClearHabits deletes every habit of the owner together with its completions
// and returns the number of habits removed.
func (r *HabitRepository) ClearHabits(ctx context.Context, ownerID string) (int, error) {
	var deleted int64
	err := withTx(ctx, r.db, "clear habits", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM habit_completions
			WHERE habit_id IN (SELECT habit_id FROM habits WHERE owner_id = ?)
		`, ownerID)
		if err != nil {
			return storeErr("clear habits", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE owner_id = ?`, ownerID)
		if err != nil {
			return storeErr("clear habits", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return storeErr("clear habits", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var h domain.Habit
	var frequency, createdAt string
	var description, reminderTime sql.NullString

	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &frequency, &description, &reminderTime, &createdAt); err != nil {
		return nil, err
	}

	var err error
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for habit %d: %w", h.ID, err)
	}
	h.Frequency = domain.Frequency(frequency)
	h.Description = stringPtr(description)
	h.ReminderTime = stringPtr(reminderTime)

	return &h, nil
}
