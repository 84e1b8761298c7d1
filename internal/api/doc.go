// Package api serves the notifier's small HTTP surface: liveness and
// readiness probes, and the internal endpoint writers call to invalidate
// cached scans. The websocket and metrics endpoints are mounted by the
// server from their own packages.
package api
