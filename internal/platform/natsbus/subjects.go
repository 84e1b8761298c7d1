package natsbus

import "github.com/google/uuid"

const (
	userSubjectPrefix = "notifier.user."
	allSubject        = "notifier.events.all"

	// ChangeSubject is where writers publish change events.
	ChangeSubject = "notifier.changes"
)

// UserSubject returns the subject notifications for the user are published
// on, e.g. "notifier.user.<id>.task-reminder".
func UserSubject(userID uuid.UUID, event string) string {
	return userSubjectPrefix + userID.String() + "." + event
}
