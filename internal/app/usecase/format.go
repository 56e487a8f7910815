package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
)

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func formatStreak(streak int, f domain.Frequency) string {
	if streak == 0 {
		return "no streak yet"
	}
	return plural(streak, f.Unit()) + " streak 🔥"
}

func formatHabitList(summaries []HabitSummary) string {
	if len(summaries) == 0 {
		return "You haven't created any habits yet. Try: #habit add Read | daily"
	}

	sb := strings.Builder{}
	sb.WriteString("Your habits:\n")
	for _, s := range summaries {
		h := s.Habit
		sb.WriteString(fmt.Sprintf("\n#%d %s (%s) - %s\n", h.ID, h.Name, h.Frequency, formatStreak(s.Streak, h.Frequency)))

		var details []string
		if h.Description != nil {
			details = append(details, *h.Description)
		}
		if h.ReminderTime != nil {
			details = append(details, "⏰ "+*h.ReminderTime)
		}
		if s.LastPeriod != nil {
			details = append(details, "last: "+s.LastPeriod.Key())
		}
		if len(details) > 0 {
			sb.WriteString("   " + strings.Join(details, " · ") + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTodo(t *domain.Todo) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	line := fmt.Sprintf("%s #%d %s", box, t.ID, t.Title)
	if t.Priority > 0 {
		line += fmt.Sprintf(" (P%d)", t.Priority)
	}
	if t.DueDate != nil {
		line += " · due " + *t.DueDate
	}
	if t.Recurring {
		line += " · daily"
	}
	if t.Description != nil {
		line += "\n      " + *t.Description
	}
	return line
}

func formatTodoList(todos []*domain.Todo) string {
	if len(todos) == 0 {
		return "No todos. Add one with: #todo add <title>"
	}

	lines := make([]string, 0, len(todos)+1)
	lines = append(lines, "Your todos:")
	for _, t := range todos {
		lines = append(lines, formatTodo(t))
	}
	return strings.Join(lines, "\n")
}

// FormatTodoBoard renders the text of a pinned todo board.
func FormatTodoBoard(todos []*domain.Todo) string {
	sb := strings.Builder{}
	sb.WriteString("📋 To-Do List\n\n")
	if len(todos) == 0 {
		sb.WriteString("No tasks added yet.")
	} else {
		for i, t := range todos {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(formatTodo(t))
		}
	}
	sb.WriteString("\n\nAdd with #todo add, finish with #todo done <id>")
	return sb.String()
}

func formatGroupInfo(info *domain.GroupInfo, loc *time.Location) string {
	owner := "unknown"
	if info.OwnerID != "" {
		owner = info.OwnerID
	}
	created := "unknown"
	if !info.CreatedAt.IsZero() {
		if loc == nil {
			loc = time.UTC
		}
		created = info.CreatedAt.In(loc).Format(domain.DueDateLayout)
	}

	return fmt.Sprintf("📊 Information about %s\nOwner: %s\nMembers: %d\nAdmins: %d\nCreated: %s",
		info.Name, owner, info.Participants, info.Admins, created)
}
