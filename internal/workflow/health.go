package workflow

import (
	"context"

	"dubforge/internal/stage"
)

// Health reports the readiness of every configured stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}
