package notify

import (
	"fmt"
	"strings"
)

// maxListed is the number of tasks named in a summary message.
const maxListed = 3

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimeRemaining renders whole minutes before a due date.
func FormatTimeRemaining(minutes int) string {
	if minutes < 1 {
		return "less than a minute"
	}
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	return formatHoursMinutes(minutes/60, minutes%60)
}

// FormatOverdue renders how late a task is.
func FormatOverdue(hours, minutes int) string {
	if hours == 0 && minutes < 1 {
		return "less than a minute"
	}
	if hours == 0 {
		return plural(minutes, "minute")
	}
	return formatHoursMinutes(hours, minutes)
}

func formatHoursMinutes(hours, minutes int) string {
	if minutes == 0 {
		return plural(hours, "hour")
	}
	return plural(hours, "hour") + " and " + plural(minutes, "minute")
}

// ReminderMessage builds the single-task reminder. The wording escalates at
// 5 and 15 minutes.
func ReminderMessage(title string, minutes int) string {
	remaining := FormatTimeRemaining(minutes)
	switch {
	case minutes <= 5:
		return fmt.Sprintf(`🚨 Urgent: "%s" is due in %s only!`, title, remaining)
	case minutes <= 15:
		return fmt.Sprintf(`⏰ Urgent reminder: "%s" is due in %s`, title, remaining)
	default:
		return fmt.Sprintf(`📝 Reminder: you have "%s" due in %s`, title, remaining)
	}
}

// OverdueMessage builds the single-task overdue alert.
func OverdueMessage(title string, hours, minutes int) string {
	return fmt.Sprintf(`🔴 Overdue task: "%s" is late by %s`, title, FormatOverdue(hours, minutes))
}

// summary joins the first maxListed items and appends the count of the
// rest.
func summary(items []string, total int) string {
	var b strings.Builder
	b.WriteString(strings.Join(items, ", "))
	if total > maxListed {
		fmt.Fprintf(&b, " and %d more", total-maxListed)
	}
	return b.String()
}
