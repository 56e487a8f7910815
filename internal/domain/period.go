package domain

import (
	"fmt"
	"time"
)

const (
	dailyKeyLayout   = "2006-01-02"
	monthlyKeyLayout = "2006-01"
)

// Period is one tracking period of a habit: a calendar day, an ISO week or a
// calendar month. start is the first civil day of the period, stored as UTC
// midnight so that day arithmetic is exact.
type Period struct {
	Frequency Frequency
	start     time.Time
}

// PeriodOf returns the period of frequency f containing t, with the calendar
// taken in loc.
func PeriodOf(t time.Time, f Frequency, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)

	switch f {
	case FrequencyWeekly:
		// ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		day = day.AddDate(0, 0, -offset)
	case FrequencyMonthly:
		day = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	return Period{Frequency: f, start: day}
}

// ParsePeriodKey is the inverse of Period.Key. Only the canonical form is
// accepted.
func ParsePeriodKey(f Frequency, key string) (Period, error) {
	p, err := parsePeriodKey(f, key)
	if err != nil {
		return Period{}, err
	}
	if p.Key() != key {
		return Period{}, fmt.Errorf("invalid %s period key %q: want %q", f, key, p.Key())
	}
	return p, nil
}

func parsePeriodKey(f Frequency, key string) (Period, error) {
	switch f {
	case FrequencyDaily:
		day, err := time.Parse(dailyKeyLayout, key)
		if err != nil {
			return Period{}, fmt.Errorf("invalid daily period key %q: %w", key, err)
		}
		return Period{Frequency: f, start: day}, nil

	case FrequencyWeekly:
		var year, week int
		if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
			return Period{}, fmt.Errorf("invalid weekly period key %q: %w", key, err)
		}
		start := isoWeekStart(year, week)
		if y, w := start.ISOWeek(); y != year || w != week {
			return Period{}, fmt.Errorf("invalid weekly period key %q: no such ISO week", key)
		}
		return Period{Frequency: f, start: start}, nil

	case FrequencyMonthly:
		month, err := time.Parse(monthlyKeyLayout, key)
		if err != nil {
			return Period{}, fmt.Errorf("invalid monthly period key %q: %w", key, err)
		}
		return Period{Frequency: f, start: month}, nil
	}

	return Period{}, fmt.Errorf("unknown frequency %q", f)
}

// isoWeekStart returns the Monday of ISO week w in ISO year y.
func isoWeekStart(y, w int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(y, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (w-1)*7)
}

// Key is the canonical text form used as the idempotency key in the store:
// 2006-01-02 for daily, 2006-W01 for weekly, 2006-01 for monthly.
func (p Period) Key() string {
	switch p.Frequency {
	case FrequencyWeekly:
		year, week := p.start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case FrequencyMonthly:
		return p.start.Format(monthlyKeyLayout)
	default:
		return p.start.Format(dailyKeyLayout)
	}
}

// Start is the first day of the period (UTC midnight of the civil date).
func (p Period) Start() time.Time {
	return p.start
}

// Gap is the number of whole periods from older to p. It is 0 for the same
// period and negative when older is actually newer. Both periods must share
// p's frequency.
func (p Period) Gap(older Period) int {
	switch p.Frequency {
	case FrequencyWeekly:
		return int(p.start.Sub(older.start) / (7 * 24 * time.Hour))
	case FrequencyMonthly:
		return (p.start.Year()*12 + int(p.start.Month())) - (older.start.Year()*12 + int(older.start.Month()))
	default:
		return int(p.start.Sub(older.start) / (24 * time.Hour))
	}
}

func (p Period) String() string {
	return p.Key()
}
