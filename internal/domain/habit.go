package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency accepts the three frequency names, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// Unit is the word used for one period of f ("day", "week", "month").
func (f Frequency) Unit() string {
	switch f {
	case FrequencyWeekly:
		return "week"
	case FrequencyMonthly:
		return "month"
	default:
		return "day"
	}
}

type Habit struct {
	ID           int64     `json:"habit_id" db:"habit_id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	Frequency    Frequency `json:"frequency" db:"frequency"`
	Description  *string   `json:"description,omitempty" db:"description"`
	ReminderTime *string   `json:"reminder_time,omitempty" db:"reminder_time"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Completion struct {
	ID          int64     `json:"completion_id" db:"completion_id"`
	HabitID     int64     `json:"habit_id" db:"habit_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	PeriodKey   string    `json:"period_key" db:"period_key"`
}

type CreateHabitParams struct {
	OwnerID      string
	Name         string
	Frequency    Frequency
	Description  *string
	ReminderTime *string
}

type HabitRepository interface {
	CreateHabit(ctx context.Context, params CreateHabitParams) (int64, error)
	GetHabit(ctx context.Context, habitID int64) (*Habit, error)
	ListHabits(ctx context.Context, ownerID string) ([]*Habit, error)
	InsertCompletion(ctx context.Context, habitID int64, periodKey string, at time.Time) (*Completion, error)
	ListCompletions(ctx context.Context, habitID int64) ([]*Completion, error)
	ClearHabits(ctx context.Context, ownerID string) (int, error)
}
