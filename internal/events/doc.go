// Package events carries change notifications from writers to the
// components that derive state from the task store.
//
// Writers emit a ChangeEvent after creating, updating, or deleting tasks or
// lists. Handlers, such as the scan cache invalidation hook, react without
// the writer knowing about them.
package events
