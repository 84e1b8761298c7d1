package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/store"
)

const scanSelect = `
	SELECT i.id, i.title, i.due_date, i.completed, i.is_deleted, i.todo_list_id,
	       l.id, l.user_id, l.title, l.is_deleted
	FROM todo_items i
	INNER JOIN todo_lists l ON l.id = i.todo_list_id AND l.is_deleted = false
	WHERE i.completed = false
	  AND i.is_deleted = false
	  AND i.due_date IS NOT NULL`

// PostgresTaskStore implements store.TaskScanStore over the todo_items and
// todo_lists tables.
type PostgresTaskStore struct {
	db store.Querier
}

// NewPostgresTaskStore creates a new PostgresTaskStore. db may be a *sql.DB
// or a *sql.Tx.
func NewPostgresTaskStore(db store.Querier) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskScanStore interface
var _ store.TaskScanStore = (*PostgresTaskStore)(nil)

// FindEligibleTasks implements store.TaskScanStore.
func (s *PostgresTaskStore) FindEligibleTasks(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildScanQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if IsUnavailable(err) {
			log.Warn("database unavailable for task scan", "error", err)
		} else {
			log.Error("failed to query eligible tasks", "error", err)
		}
		return nil, store.NewStoreError("task", "scan", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		var (
			t     domain.Task
			list  domain.TaskList
			title sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.Title, &t.DueAt, &t.Completed, &t.Deleted, &t.ListID,
			&list.ID, &list.UserID, &title, &list.Deleted,
		); err != nil {
			log.Error("failed to scan task row", "error", err)
			return nil, store.NewStoreError("task", "scan", "row decode failed", err)
		}
		list.Title = title.String
		t.List = &list
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "error", err)
		return nil, store.NewStoreError("task", "scan", "row iteration failed", MapError(err))
	}

	log.Debug("eligible tasks loaded", "count", len(tasks))
	return tasks, nil
}

// buildScanQuery translates a TaskFilter into SQL. Bounds use the same
// inclusivity as TaskFilter.Matches.
func buildScanQuery(filter store.TaskFilter) (string, []any, error) {
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}

	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(scanSelect)

	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&b, "\n\t  AND i.due_date %s $%d", cond, len(args))
	}
	if filter.DueFrom != nil {
		add(">=", filter.DueFrom.UTC())
	}
	if filter.DueTo != nil {
		add("<=", filter.DueTo.UTC())
	}
	if filter.DueBefore != nil {
		add("<", filter.DueBefore.UTC())
	}

	b.WriteString("\n\tORDER BY i.due_date ASC, i.id ASC")
	return b.String(), args, nil
}
