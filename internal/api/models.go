package api

import "github.com/google/uuid"

// InvalidateRequest is the optional body of the scan invalidation endpoint.
// An empty body means "a task changed".
type InvalidateRequest struct {
	Type     string    `json:"type" validate:"required,oneof=task.changed list.changed"`
	Entity   string    `json:"entity" validate:"omitempty,oneof=task list"`
	EntityID uuid.UUID `json:"entity_id"`
}

// InvalidateResponse reports how many cached scans were dropped.
type InvalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

// StatusResponse is returned by the probe endpoints.
type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
