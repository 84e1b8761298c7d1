package store

import (
	"context"
	"fmt"
	"time"

	"github.com/todoapp/notifier/internal/domain"
)

// TaskFilter selects scan-eligible tasks by due date. Completion, soft
// deletion, and the owning list's soft deletion are always filtered; only
// the due-date range varies.
//
// DueFrom and DueTo are inclusive bounds; DueBefore is exclusive. At least
// one bound must be set.
type TaskFilter struct {
	DueFrom   *time.Time
	DueTo     *time.Time
	DueBefore *time.Time
}

// DueBetween returns a filter for tasks due in [from, to].
func DueBetween(from, to time.Time) TaskFilter {
	return TaskFilter{DueFrom: &from, DueTo: &to}
}

// DueBefore returns a filter for tasks due strictly before t.
func DueBefore(t time.Time) TaskFilter {
	return TaskFilter{DueBefore: &t}
}

// Validate checks the filter has at least one bound and a sane range.
func (f TaskFilter) Validate() error {
	if f.DueFrom == nil && f.DueTo == nil && f.DueBefore == nil {
		return fmt.Errorf("%w: no due-date bound", ErrInvalidFilter)
	}
	if f.DueFrom != nil && f.DueTo != nil && f.DueTo.Before(*f.DueFrom) {
		return fmt.Errorf("%w: range end %s before start %s",
			ErrInvalidFilter, f.DueTo.Format(time.RFC3339), f.DueFrom.Format(time.RFC3339))
	}
	return nil
}

// Matches reports whether the task satisfies the filter, including the
// completion and soft-delete predicates. In-memory stores use it; SQL stores
// translate the same predicate into a query.
func (f TaskFilter) Matches(t domain.Task) bool {
	if !t.Eligible() {
		return false
	}
	if f.DueFrom != nil && t.DueAt.Before(*f.DueFrom) {
		return false
	}
	if f.DueTo != nil && t.DueAt.After(*f.DueTo) {
		return false
	}
	if f.DueBefore != nil && !t.DueAt.Before(*f.DueBefore) {
		return false
	}
	return true
}

// TaskScanStore is the authoritative source of tasks for the scans.
// Version: 1.0
type TaskScanStore interface {
	// FindEligibleTasks returns open, non-deleted tasks matching the filter,
	// each joined with its non-deleted owning list. Each task appears at
	// most once.
	FindEligibleTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}
