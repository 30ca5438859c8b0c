package health

import "context"

// Checker probes one dependency (embedding provider, generator, downstream service).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
