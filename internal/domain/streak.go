package domain

import "fmt"

// CalculateStreak counts consecutive periods ending at periods[0]. The slice
// must be ordered most recent first. A repeated period is skipped; the first
// gap of more than one period ends the streak.
func CalculateStreak(periods []Period) int {
	if len(periods) == 0 {
		return 0
	}

	streak := 1
	cursor := periods[0]
	for _, p := range periods[1:] {
		gap := cursor.Gap(p)
		switch {
		case gap == 1:
			streak++
			cursor = p
		case gap <= 0:
			continue
		default:
			return streak
		}
	}

	return streak
}

// CompletionPeriods decodes the stored period keys of completions, keeping
// their order.
func CompletionPeriods(f Frequency, completions []*Completion) ([]Period, error) {
	periods := make([]Period, 0, len(completions))
	for _, c := range completions {
		p, err := ParsePeriodKey(f, c.PeriodKey)
		if err != nil {
			return nil, fmt.Errorf("completion %d: %w", c.ID, err)
		}
		periods = append(periods, p)
	}
	return periods, nil
}
