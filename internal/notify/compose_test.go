package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoapp/notifier/internal/domain"
)

func entry(title string, d time.Duration) domain.NotificationEntry {
	listID := uuid.New()
	return domain.NotificationEntry{
		Task: domain.Task{
			ID:     uuid.New(),
			Title:  title,
			DueAt:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
			ListID: listID,
			List:   &domain.TaskList{ID: listID, Title: "Inbox"},
		},
		Duration: d,
	}
}

func TestComposeReminder_SortAndPriority(t *testing.T) {
	recipient := uuid.New()
	entries := []domain.NotificationEntry{
		entry("A", 2*time.Minute),
		entry("B", 40*time.Minute),
		entry("C", 2*time.Minute),
	}

	n, payload := ComposeReminder(recipient, entries)

	assert.Equal(t, domain.PriorityUrgent, n.Priority)
	assert.Equal(t, domain.ChannelReminder, n.Channel)
	assert.Equal(t, domain.EventTaskReminder, n.Event)
	assert.Equal(t, recipient, n.RecipientID)
	assert.Equal(t, "Reminder: 3 tasks due soon", n.Subject)
	assert.Equal(t,
		`🔔 You have 3 tasks due soon: "A" (2 minutes), "C" (2 minutes), "B" (40 minutes)`,
		n.Message)

	require.Len(t, payload.Tasks, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{
		payload.Tasks[0].TaskTitle, payload.Tasks[1].TaskTitle, payload.Tasks[2].TaskTitle,
	})
	assert.Equal(t, 3, payload.TotalTasks)
	assert.Equal(t, 40, payload.Tasks[2].TimeRemainingMinutes)
	assert.Equal(t, "Inbox", payload.Tasks[0].TodoListTitle)
}

func TestComposeReminder_Single(t *testing.T) {
	n, payload := ComposeReminder(uuid.New(), []domain.NotificationEntry{entry("Pay rent", 2*time.Minute+time.Second)})

	assert.Equal(t, `🚨 Urgent: "Pay rent" is due in 3 minutes only!`, n.Message)
	assert.Equal(t, domain.PriorityUrgent, n.Priority)
	assert.Equal(t, "Reminder: task due soon", n.Subject)
	assert.Equal(t, 3, payload.Tasks[0].TimeRemainingMinutes)
}

func TestComposeReminder_MoreThanThree(t *testing.T) {
	entries := []domain.NotificationEntry{
		entry("E", 29*time.Minute),
		entry("D", 20*time.Minute),
		entry("C", 16*time.Minute),
		entry("B", 10*time.Minute),
		entry("A", 9*time.Minute),
	}
	n, _ := ComposeReminder(uuid.New(), entries)

	assert.Equal(t,
		`🔔 You have 5 tasks due soon: "A" (9 minutes), "B" (10 minutes), "C" (16 minutes) and 2 more`,
		n.Message)
	assert.Equal(t, domain.PriorityHigh, n.Priority)
}

func TestComposeReminder_PayloadJSON(t *testing.T) {
	_, payload := ComposeReminder(uuid.New(), []domain.NotificationEntry{entry("X", 20*time.Minute)})
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "normal", decoded["priority"])
	assert.EqualValues(t, 1, decoded["totalTasks"])
	task := decoded["tasks"].([]any)[0].(map[string]any)
	for _, key := range []string{"taskId", "taskTitle", "dueDate", "timeRemainingMinutes", "todoListTitle"} {
		assert.Contains(t, task, key)
	}
}

func TestComposeOverdue(t *testing.T) {
	entries := []domain.NotificationEntry{
		entry("Recent", 10*time.Minute),
		entry("Ancient", 26*time.Hour+3*time.Minute),
		entry("Middle", 90*time.Minute+59*time.Second),
	}
	n, payload := ComposeOverdue(uuid.New(), entries)

	assert.Equal(t, domain.PriorityCritical, n.Priority)
	assert.Equal(t, domain.EventTaskOverdue, n.Event)
	assert.Equal(t, "Alert: 3 overdue tasks", n.Subject)
	assert.Equal(t,
		`🔴 You have 3 overdue tasks: "Ancient" (late by 26 hours and 3 minutes), "Middle" (late by 1 hour and 30 minutes), "Recent" (late by 10 minutes)`,
		n.Message)
	assert.Equal(t, 1, payload.Tasks[1].OverdueHours)
	assert.Equal(t, 30, payload.Tasks[1].OverdueMinutes)

	single, _ := ComposeOverdue(uuid.New(), []domain.NotificationEntry{entry("Taxes", 5*time.Minute)})
	assert.Equal(t, `🔴 Overdue task: "Taxes" is late by 5 minutes`, single.Message)
	assert.Equal(t, "Alert: overdue task", single.Subject)
	assert.Equal(t, domain.PriorityCritical, single.Priority)
}
