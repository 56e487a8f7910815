package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateHabit     = errors.New("habit with this name already exists")
	ErrHabitNotFound      = errors.New("habit not found")
	ErrAlreadyCompleted   = errors.New("habit already completed for this period")
	ErrCompletionRejected = errors.New("completion rejected")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrTodoAlreadyDone    = errors.New("todo already completed")
)

// StoreError reports a failure of the underlying storage, as opposed to one of
// the expected outcomes above. Only these are worth retrying.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
