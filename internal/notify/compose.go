package notify

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/domain"
)

// Email subjects.
const (
	subjectReminderOne  = "Reminder: task due soon"
	subjectReminderMany = "Reminder: %d tasks due soon"
	subjectOverdueOne   = "Alert: overdue task"
	subjectOverdueMany  = "Alert: %d overdue tasks"
)

// Payload is the body of a real-time notification event.
type Payload[T any] struct {
	Message    string          `json:"message"`
	TotalTasks int             `json:"totalTasks"`
	Tasks      []T             `json:"tasks"`
	Priority   domain.Priority `json:"priority"`
}

// ReminderTask describes one task in a task-reminder event.
type ReminderTask struct {
	TaskID               uuid.UUID `json:"taskId"`
	TaskTitle            string    `json:"taskTitle"`
	DueDate              time.Time `json:"dueDate"`
	TimeRemainingMinutes int       `json:"timeRemainingMinutes"`
	TodoListTitle        string    `json:"todoListTitle"`
}

// OverdueTask describes one task in a task-overdue event.
type OverdueTask struct {
	TaskID         uuid.UUID `json:"taskId"`
	TaskTitle      string    `json:"taskTitle"`
	DueDate        time.Time `json:"dueDate"`
	OverdueHours   int       `json:"overdueHours"`
	OverdueMinutes int       `json:"overdueMinutes"`
	TodoListTitle  string    `json:"todoListTitle"`
}

func listTitle(t domain.Task) string {
	if t.List == nil {
		return ""
	}
	return t.List.Title
}

// ComposeReminder builds the reminder for one recipient. Entries carry the
// time remaining and are sorted soonest first; the input slice is
// reordered in place. It must not be empty.
func ComposeReminder(recipient uuid.UUID, entries []domain.NotificationEntry) (domain.GroupedNotification, Payload[ReminderTask]) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Duration < entries[j].Duration
	})

	// Priority follows the most urgent task.
	mostUrgent := entries[0].Minutes()
	n := domain.GroupedNotification{
		Channel:     domain.ChannelReminder,
		RecipientID: recipient,
		Entries:     entries,
		Priority:    domain.PriorityFromMinutes(mostUrgent),
		Event:       domain.EventTaskReminder,
	}

	if len(entries) == 1 {
		n.Message = ReminderMessage(entries[0].Task.Title, mostUrgent)
		n.Subject = subjectReminderOne
	} else {
		items := make([]string, 0, maxListed)
		for _, e := range entries[:min(len(entries), maxListed)] {
			items = append(items, fmt.Sprintf(`"%s" (%s)`, e.Task.Title, FormatTimeRemaining(e.Minutes())))
		}
		n.Message = fmt.Sprintf("🔔 You have %d tasks due soon: %s", len(entries), summary(items, len(entries)))
		n.Subject = fmt.Sprintf(subjectReminderMany, len(entries))
	}

	payload := Payload[ReminderTask]{
		Message:    n.Message,
		TotalTasks: len(entries),
		Tasks:      make([]ReminderTask, 0, len(entries)),
		Priority:   n.Priority,
	}
	for _, e := range entries {
		payload.Tasks = append(payload.Tasks, ReminderTask{
			TaskID:               e.Task.ID,
			TaskTitle:            e.Task.Title,
			DueDate:              e.Task.DueAt,
			TimeRemainingMinutes: e.Minutes(),
			TodoListTitle:        listTitle(e.Task),
		})
	}
	return n, payload
}

// ComposeOverdue builds the overdue alert for one recipient. Entries carry
// the time since the due date and are sorted most overdue first; the input
// slice is reordered in place. It must not be empty.
func ComposeOverdue(recipient uuid.UUID, entries []domain.NotificationEntry) (domain.GroupedNotification, Payload[OverdueTask]) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Duration > entries[j].Duration
	})

	n := domain.GroupedNotification{
		Channel:     domain.ChannelOverdue,
		RecipientID: recipient,
		Entries:     entries,
		Priority:    domain.PriorityCritical,
		Event:       domain.EventTaskOverdue,
	}

	if len(entries) == 1 {
		h, m := entries[0].HoursAndMinutes()
		n.Message = OverdueMessage(entries[0].Task.Title, h, m)
		n.Subject = subjectOverdueOne
	} else {
		items := make([]string, 0, maxListed)
		for _, e := range entries[:min(len(entries), maxListed)] {
			h, m := e.HoursAndMinutes()
			items = append(items, fmt.Sprintf(`"%s" (late by %s)`, e.Task.Title, FormatOverdue(h, m)))
		}
		n.Message = fmt.Sprintf("🔴 You have %d overdue tasks: %s", len(entries), summary(items, len(entries)))
		n.Subject = fmt.Sprintf(subjectOverdueMany, len(entries))
	}

	payload := Payload[OverdueTask]{
		Message:    n.Message,
		TotalTasks: len(entries),
		Tasks:      make([]OverdueTask, 0, len(entries)),
		Priority:   n.Priority,
	}
	for _, e := range entries {
		h, m := e.HoursAndMinutes()
		payload.Tasks = append(payload.Tasks, OverdueTask{
			TaskID:         e.Task.ID,
			TaskTitle:      e.Task.Title,
			DueDate:        e.Task.DueAt,
			OverdueHours:   h,
			OverdueMinutes: m,
			TodoListTitle:  listTitle(e.Task),
		})
	}
	return n, payload
}
