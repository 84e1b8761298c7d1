package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item as seen by the scheduler. It is created and updated
// by the CRUD layer and is read-only here.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	DueAt     time.Time `json:"due_at"`
	Completed bool      `json:"completed"`
	Deleted   bool      `json:"deleted"`
	ListID    uuid.UUID `json:"list_id"`

	// List is the joined owning list. It is nil when the join filtered the
	// list out, in which case the task cannot be routed to a recipient.
	List *TaskList `json:"list,omitempty"`
}

// TaskList is the list a task belongs to. Its owner is the notification
// recipient.
type TaskList struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
	Deleted bool      `json:"deleted"`
}

// Eligible reports whether the task may appear in a scan: it must be open,
// not soft-deleted, and, when the list is known, owned by a live list.
func (t Task) Eligible() bool {
	if t.Completed || t.Deleted {
		return false
	}
	if t.List != nil && t.List.Deleted {
		return false
	}
	return true
}

// Recipient returns the owning user of the task and whether it is known.
func (t Task) Recipient() (uuid.UUID, bool) {
	if t.List == nil || t.List.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return t.List.UserID, true
}
