package domain

import (
	"errors"
	"time"
)

var ErrNotGroup = errors.New("chat is not a group")

// GroupInfo describes a group chat as reported by the chat platform.
type GroupInfo struct {
	ID           string
	Name         string
	OwnerID      string // Empty when the platform does not report one
	Participants int
	Admins       int
	CreatedAt    time.Time
}
