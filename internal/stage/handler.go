// Package stage defines the contract between the workflow manager and the
// pipeline stages.
package stage

import (
	"context"

	"dubforge/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
//
// Prepare runs quick validation and task mutation before the long-running
// work; Execute does the work itself. Both receive the task by pointer and
// the manager persists it after each call.
type Handler interface {
	Prepare(context.Context, *queue.Task) error
	Execute(context.Context, *queue.Task) error
	HealthCheck(context.Context) Health
}

// Health summarizes the readiness of a workflow stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
