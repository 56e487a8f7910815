package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fardannozami/habit-bot/internal/domain"
	"github.com/fardannozami/habit-bot/internal/logger"
	"github.com/fardannozami/habit-bot/internal/metrics"
)

// Message is an inbound chat message with the sender already resolved to a
// stable identity.
type Message struct {
	ChatID   string
	SenderID string
	PushName string
	Text     string
}

const helpText = `Commands:
#habit add <name> | <daily|weekly|monthly> [| <description>] [| <HH:MM>]
#habit done <id>
#habit streak <id>
#habit list
#habit clear
#todo add <title> [| due:YYYY-MM-DD] [| priority:0-5] [| daily] [| <description>]
#todo done <id>
#todo list [all]
#todo clear
#todo board
#groupinfo
#ping`

// ChatInfo answers questions about the chat platform itself.
type ChatInfo interface {
	Ping(ctx context.Context) (time.Duration, error)
	GroupInfo(ctx context.Context, chatID string) (*domain.GroupInfo, error)
}

type HandleMessageUsecase struct {
	habits  domain.HabitRepository
	record  *RecordCompletionUsecase
	streaks *ComputeStreakUsecase
	list    *ListHabitsUsecase
	todos   *TodoUsecase
	chat    ChatInfo
	loc     *time.Location
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewHandleMessageUsecase(habits domain.HabitRepository, todos *TodoUsecase, loc *time.Location, m *metrics.Metrics) *HandleMessageUsecase {
	return &HandleMessageUsecase{
		habits:  habits,
		record:  NewRecordCompletionUsecase(habits, loc, m),
		streaks: NewComputeStreakUsecase(habits),
		list:    NewListHabitsUsecase(habits),
		todos:   todos,
		loc:     loc,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (uc *HandleMessageUsecase) WithClock(now func() time.Time) *HandleMessageUsecase {
	uc.now = now
	return uc
}

// WithChatInfo enables #ping latency and #groupinfo.
func (uc *HandleMessageUsecase) WithChatInfo(chat ChatInfo) *HandleMessageUsecase {
	uc.chat = chat
	return uc
}

// Execute returns the reply for msg, or "" when msg is not a command. Only
// storage failures are returned as errors; every expected outcome becomes a
// reply.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, msg Message) (string, error) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "#") {
		return "", nil
	}

	word, rest := nextWord(text)
	command := strings.ToLower(word)

	var reply string
	var err error
	switch command {
	case "#ping":
		reply = uc.ping(ctx)
	case "#groupinfo", "#serverinfo":
		reply, err = uc.groupInfo(ctx, msg.ChatID)
	case "#help":
		reply = helpText
	case "#habit", "#habits":
		var sub string
		sub, rest = nextWord(rest)
		command += " " + strings.ToLower(sub)
		reply, err = uc.handleHabit(ctx, msg, strings.ToLower(sub), rest)
	case "#todo", "#todos":
		var sub string
		sub, rest = nextWord(rest)
		command += " " + strings.ToLower(sub)
		reply, err = uc.handleTodo(ctx, msg, strings.ToLower(sub), rest)
	default:
		return "", nil
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	uc.metrics.CommandHandled(strings.TrimSpace(command), outcome)

	return reply, err
}

func (uc *HandleMessageUsecase) ping(ctx context.Context) string {
	if uc.chat == nil {
		return "Pong! 🏓"
	}
	rtt, err := uc.chat.Ping(ctx)
	if err != nil {
		logger.Warn("Ping failed", "error", err)
		return "Pong! 🏓 (latency unavailable)"
	}
	return fmt.Sprintf("Pong! 🏓 Latency: %dms", rtt.Milliseconds())
}

func (uc *HandleMessageUsecase) groupInfo(ctx context.Context, chatID string) (string, error) {
	if uc.chat == nil {
		return "Group info is not available.", nil
	}
	info, err := uc.chat.GroupInfo(ctx, chatID)
	if errors.Is(err, domain.ErrNotGroup) {
		return "This command only works in a group.", nil
	}
	if err != nil {
		return "", err
	}
	return formatGroupInfo(info, uc.loc), nil
}

func (uc *HandleMessageUsecase) handleHabit(ctx context.Context, msg Message, sub, args string) (string, error) {
	switch sub {
	case "add":
		return uc.addHabit(ctx, msg.SenderID, args)
	case "done", "complete":
		id, ok := parseID(args)
		if !ok {
			return "Usage: #habit done <id>", nil
		}
		return uc.completeHabit(ctx, msg.SenderID, id)
	case "streak":
		id, ok := parseID(args)
		if !ok {
			return "Usage: #habit streak <id>", nil
		}
		return uc.habitStreak(ctx, msg.SenderID, id)
	case "list":
		summaries, err := uc.list.Execute(ctx, msg.SenderID)
		if err != nil {
			return "", err
		}
		return formatHabitList(summaries), nil
	case "clear":
		n, err := uc.habits.ClearHabits(ctx, msg.SenderID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s.", plural(n, "habit")), nil
	default:
		return helpText, nil
	}
}

func (uc *HandleMessageUsecase) addHabit(ctx context.Context, ownerID, args string) (string, error) {
	const usage = "Usage: #habit add <name> | <daily|weekly|monthly> [| <description>] [| <HH:MM>]"

	parts := splitArgs(args)
	if len(parts) < 2 || parts[0] == "" {
		return usage, nil
	}

	frequency, err := domain.ParseFrequency(parts[1])
	if err != nil {
		return "Frequency must be daily, weekly or monthly.", nil
	}

	params := domain.CreateHabitParams{
		OwnerID:   ownerID,
		Name:      parts[0],
		Frequency: frequency,
	}
	if len(parts) > 2 && parts[2] != "" {
		params.Description = &parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		if _, err := time.Parse("15:04", parts[3]); err != nil {
			return "Reminder time must look like 07:30.", nil
		}
		params.ReminderTime = &parts[3]
	}

	id, err := uc.habits.CreateHabit(ctx, params)
	if errors.Is(err, domain.ErrDuplicateHabit) {
		return fmt.Sprintf("You already have a habit called %q.", params.Name), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Habit #%d added: %s (%s). Mark it with #habit done %d", id, params.Name, frequency, id), nil
}

func (uc *HandleMessageUsecase) completeHabit(ctx context.Context, ownerID string, habitID int64) (string, error) {
	res, err := uc.record.Execute(ctx, ownerID, habitID, uc.now())
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		return fmt.Sprintf("Habit #%d not found.", habitID), nil
	case errors.Is(err, domain.ErrCompletionRejected):
		habit, getErr := uc.habits.GetHabit(ctx, habitID)
		if getErr != nil {
			return "Already completed for this period. 😉", nil
		}
		return fmt.Sprintf("%s is already done this %s. 😉", habit.Name, habit.Frequency.Unit()), nil
	case err != nil:
		return "", err
	}

	return fmt.Sprintf("✅ %s done for %s. Current streak: %s",
		res.Habit.Name, res.Period.Key(), formatStreak(res.Streak, res.Habit.Frequency)), nil
}

func (uc *HandleMessageUsecase) habitStreak(ctx context.Context, ownerID string, habitID int64) (string, error) {
	habit, err := ownedHabit(ctx, uc.habits, ownerID, habitID)
	if errors.Is(err, domain.ErrHabitNotFound) {
		return fmt.Sprintf("Habit #%d not found.", habitID), nil
	}
	if err != nil {
		return "", err
	}

	streak, _, err := uc.streaks.streakOf(ctx, habit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s", habit.Name, formatStreak(streak, habit.Frequency)), nil
}

func (uc *HandleMessageUsecase) handleTodo(ctx context.Context, msg Message, sub, args string) (string, error) {
	if uc.todos == nil {
		return "Todos are not enabled.", nil
	}

	switch sub {
	case "add":
		return uc.addTodo(ctx, msg.SenderID, args)
	case "done", "complete":
		id, ok := parseID(args)
		if !ok {
			return "Usage: #todo done <id>", nil
		}
		err := uc.todos.Complete(ctx, msg.SenderID, id, uc.now())
		switch {
		case errors.Is(err, domain.ErrTodoNotFound):
			return fmt.Sprintf("Todo #%d not found.", id), nil
		case errors.Is(err, domain.ErrTodoAlreadyDone):
			return fmt.Sprintf("Todo #%d is already done.", id), nil
		case err != nil:
			return "", err
		}
		return fmt.Sprintf("Marked todo #%d as completed ✅", id), nil
	case "list":
		includeCompleted := strings.EqualFold(strings.TrimSpace(args), "all")
		todos, err := uc.todos.List(ctx, msg.SenderID, includeCompleted)
		if err != nil {
			return "", err
		}
		return formatTodoList(todos), nil
	case "clear":
		n, err := uc.todos.Clear(ctx, msg.SenderID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s.", plural(n, "todo")), nil
	case "board":
		err := uc.todos.PostBoard(ctx, msg.SenderID, msg.ChatID, uc.now())
		if errors.Is(err, ErrBoardUnavailable) {
			return "Todo boards are not available.", nil
		}
		if err != nil {
			return "", err
		}
		return "📌 Board posted. It updates whenever your todos change.", nil
	default:
		return helpText, nil
	}
}

func (uc *HandleMessageUsecase) addTodo(ctx context.Context, ownerID, args string) (string, error) {
	parts := splitArgs(args)
	if len(parts) == 0 || parts[0] == "" {
		return "Usage: #todo add <title> [| due:YYYY-MM-DD] [| priority:0-5] [| daily] [| <description>]", nil
	}

	params := domain.CreateTodoParams{OwnerID: ownerID, Title: parts[0]}
	for _, p := range parts[1:] {
		lower := strings.ToLower(p)
		switch {
		case p == "":
			continue
		case strings.HasPrefix(lower, "due:"):
			due := strings.TrimSpace(p[len("due:"):])
			if _, err := time.Parse(domain.DueDateLayout, due); err != nil {
				return "Due date must look like 2026-10-19.", nil
			}
			params.DueDate = &due
		case strings.HasPrefix(lower, "priority:"), strings.HasPrefix(lower, "p:"):
			value := strings.TrimSpace(p[strings.Index(p, ":")+1:])
			n, err := strconv.Atoi(value)
			if err != nil || n < domain.MinPriority || n > domain.MaxPriority {
				return fmt.Sprintf("Priority must be a number from %d to %d.", domain.MinPriority, domain.MaxPriority), nil
			}
			params.Priority = n
		case lower == "daily":
			params.Recurring = true
		default:
			if params.Description == nil {
				desc := p
				params.Description = &desc
			}
		}
	}

	id, err := uc.todos.Add(ctx, params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Todo #%d added: %s", id, params.Title), nil
}

// nextWord splits off the first whitespace-separated word of s.
func nextWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseID(s string) (int64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
