package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fardannozami/habit-bot/internal/domain"
)

// mockHabitRepo implements domain.HabitRepository in memory with the same
// uniqueness rules as the SQLite store.
type mockHabitRepo struct {
	mu          sync.Mutex
	nextID      int64
	habits      map[int64]*domain.Habit
	completions map[int64][]*domain.Completion
	failWith    error
}

func newMockHabitRepo() *mockHabitRepo {
	return &mockHabitRepo{
		habits:      make(map[int64]*domain.Habit),
		completions: make(map[int64][]*domain.Completion),
	}
}

func (m *mockHabitRepo) CreateHabit(ctx context.Context, p domain.CreateHabitParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, h := range m.habits {
		if h.OwnerID == p.OwnerID && h.Name == p.Name {
			return 0, domain.ErrDuplicateHabit
		}
	}
	m.nextID++
	m.habits[m.nextID] = &domain.Habit{
		ID:           m.nextID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Frequency:    p.Frequency,
		Description:  p.Description,
		ReminderTime: p.ReminderTime,
		CreatedAt:    time.Now(),
	}
	return m.nextID, nil
}

func (m *mockHabitRepo) GetHabit(ctx context.Context, id int64) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	h, ok := m.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return h, nil
}

func (m *mockHabitRepo) ListHabits(ctx context.Context, owner string) ([]*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*domain.Habit
	for _, h := range m.habits {
		if h.OwnerID == owner {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockHabitRepo) InsertCompletion(ctx context.Context, habitID int64, key string, at time.Time) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.habits[habitID]; !ok {
		return nil, domain.ErrHabitNotFound
	}
	for _, c := range m.completions[habitID] {
		if c.PeriodKey == key {
			return nil, domain.ErrAlreadyCompleted
		}
	}
	c := &domain.Completion{ID: int64(len(m.completions[habitID]) + 1), HabitID: habitID, PeriodKey: key, CompletedAt: at}
	m.completions[habitID] = append(m.completions[habitID], c)
	return c, nil
}

func (m *mockHabitRepo) ListCompletions(ctx context.Context, habitID int64) ([]*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := append([]*domain.Completion(nil), m.completions[habitID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (m *mockHabitRepo) ClearHabits(ctx context.Context, owner string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := 0
	for id, h := range m.habits {
		if h.OwnerID == owner {
			delete(m.completions, id)
			delete(m.habits, id)
			n++
		}
	}
	return n, nil
}

// mockTodoRepo implements domain.TodoRepository in memory.
type mockTodoRepo struct {
	nextID int64
	todos  []*domain.Todo
	boards map[string]*domain.TodoBoard
}

func newMockTodoRepo() *mockTodoRepo {
	return &mockTodoRepo{boards: make(map[string]*domain.TodoBoard)}
}

func (m *mockTodoRepo) CreateTodo(ctx context.Context, p domain.CreateTodoParams) (int64, error) {
	m.nextID++
	m.todos = append(m.todos, &domain.Todo{
		ID: m.nextID, OwnerID: p.OwnerID, Title: p.Title, Description: p.Description,
		DueDate: p.DueDate, Priority: p.Priority, Recurring: p.Recurring, CreatedAt: time.Now(),
	})
	return m.nextID, nil
}

func (m *mockTodoRepo) CompleteTodo(ctx context.Context, owner string, id int64, at time.Time) error {
	for _, t := range m.todos {
		if t.ID == id && t.OwnerID == owner {
			if t.Completed {
				return domain.ErrTodoAlreadyDone
			}
			t.Completed = true
			t.CompletedAt = &at
			return nil
		}
	}
	return domain.ErrTodoNotFound
}

func (m *mockTodoRepo) ListTodos(ctx context.Context, owner string, includeCompleted bool) ([]*domain.Todo, error) {
	var out []*domain.Todo
	for _, t := range m.todos {
		if t.OwnerID == owner && (includeCompleted || !t.Completed) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTodoRepo) ClearTodos(ctx context.Context, owner string) (int, error) {
	var kept []*domain.Todo
	for _, t := range m.todos {
		if t.OwnerID != owner {
			kept = append(kept, t)
		}
	}
	n := len(m.todos) - len(kept)
	m.todos = kept
	return n, nil
}

func (m *mockTodoRepo) ResetRecurring(ctx context.Context) (int, error) {
	n := 0
	for _, t := range m.todos {
		if t.Recurring && t.Completed {
			t.Completed = false
			t.CompletedAt = nil
			n++
		}
	}
	return n, nil
}

func (m *mockTodoRepo) GetBoard(ctx context.Context, owner string) (*domain.TodoBoard, error) {
	return m.boards[owner], nil
}

func (m *mockTodoRepo) SaveBoard(ctx context.Context, b *domain.TodoBoard) error {
	m.boards[b.OwnerID] = b
	return nil
}

type boardPost struct {
	chatID    string
	messageID string
	text      string
}

// mockPublisher records posts and edits.
type mockPublisher struct {
	posts []boardPost
	edits []boardPost
	err   error
}

func (m *mockPublisher) PostBoard(ctx context.Context, chatID, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.posts = append(m.posts, boardPost{chatID: chatID, messageID: "MSG1", text: text})
	return "MSG1", nil
}

func (m *mockPublisher) EditBoard(ctx context.Context, chatID, messageID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.edits = append(m.edits, boardPost{chatID: chatID, messageID: messageID, text: text})
	return nil
}

var errDiskFull = errors.New("disk I/O error")

// mockChatInfo returns canned platform answers.
type mockChatInfo struct {
	rtt     time.Duration
	pingErr error
	groups  map[string]*domain.GroupInfo
	err     error
}

func (m *mockChatInfo) Ping(ctx context.Context) (time.Duration, error) {
	return m.rtt, m.pingErr
}

func (m *mockChatInfo) GroupInfo(ctx context.Context, chatID string) (*domain.GroupInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.groups[chatID]
	if !ok {
		return nil, domain.ErrNotGroup
	}
	return info, nil
}
