package health

import "context"

// DBPinger checks session store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an upstream dependency: the archive or the chat model.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
