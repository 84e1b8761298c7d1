// Package jobs runs the periodic jobs on a cron schedule.
//
// Jobs are plain functions. Each run gets a context that is cancelled only
// when the runner is stopped and its grace period has expired; runs of the
// same job may overlap when one outlasts its period.
package jobs
