package domain

// Priority is the urgency attached to a notification.
type Priority string

// Priority levels, most urgent first.
const (
	PriorityCritical Priority = "critical"
	PriorityUrgent   Priority = "urgent"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
)

// PriorityFromMinutes maps whole minutes remaining before a due date to a
// priority: <=0 critical, 1-5 urgent, 6-15 high, otherwise normal.
func PriorityFromMinutes(minutesRemaining int) Priority {
	switch {
	case minutesRemaining <= 0:
		return PriorityCritical
	case minutesRemaining <= 5:
		return PriorityUrgent
	case minutesRemaining <= 15:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}
