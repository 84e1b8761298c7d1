package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel identifies a notification stream for dedup purposes.
type Channel string

// Supported channels.
const (
	ChannelReminder Channel = "reminder"
	ChannelOverdue  Channel = "overdue"
)

// Validate returns ErrInvalidChannel for anything other than the known
// channels.
func (c Channel) Validate() error {
	switch c {
	case ChannelReminder, ChannelOverdue:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChannel, string(c))
	}
}

// Real-time event names.
const (
	EventTaskReminder = "task-reminder"
	EventTaskOverdue  = "task-overdue"
)

// NotificationEntry is one task inside a grouped notification together with
// the duration computed for it during the tick: time remaining for
// reminders, time elapsed since the due date for overdue alerts.
type NotificationEntry struct {
	Task     Task
	Duration time.Duration
}

// Minutes rounds the entry duration up to whole minutes.
func (e NotificationEntry) Minutes() int {
	return CeilMinutes(e.Duration)
}

// HoursAndMinutes splits the entry duration into whole hours and the
// remaining whole minutes.
func (e NotificationEntry) HoursAndMinutes() (int, int) {
	return SplitHoursMinutes(e.Duration)
}

// GroupedNotification is the per-recipient aggregate built in one tick. It is
// never persisted.
type GroupedNotification struct {
	Channel     Channel
	RecipientID uuid.UUID
	Entries     []NotificationEntry
	Priority    Priority
	Message     string
	Event       string
	Subject     string
}

// TaskIDs returns the IDs of all tasks in the group, in entry order.
func (g GroupedNotification) TaskIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Entries))
	for _, e := range g.Entries {
		ids = append(ids, e.Task.ID)
	}
	return ids
}

// CeilMinutes rounds d up to whole minutes. Negative durations round
// towards zero, so a task 30s past due yields 0.
func CeilMinutes(d time.Duration) int {
	minutes := d / time.Minute
	if d%time.Minute > 0 {
		minutes++
	}
	return int(minutes)
}

// SplitHoursMinutes returns the whole hours in d and the whole minutes left
// over. Negative durations are treated as zero.
func SplitHoursMinutes(d time.Duration) (int, int) {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return hours, minutes
}
