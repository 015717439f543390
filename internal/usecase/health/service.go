package health

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/gaiachat/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as report keys.
const (
	ComponentDatabase = "database"
	ComponentArchive  = "archive"
	ComponentLLM      = "llm"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	archive Checker
	llm     Checker
}

// New creates a Service. Any component can be nil; the embedded client has no database.
func New(db DBPinger, archive, llm Checker) *Service {
	return &Service{db: db, archive: archive, llm: llm}
}

// Check probes every configured component concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult)
		g      errgroup.Group
	)

	probe := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			err := fn(ctx)
			if err != nil {
				logger.FromContext(ctx).Warn("Health check failed",
					zap.String("component", name), zap.Error(err))
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				checks[name] = CheckError
			} else {
				checks[name] = CheckOK
			}
			return nil
		})
	}

	if s.db != nil {
		probe(ComponentDatabase, s.db.Ping)
	}
	if s.archive != nil {
		probe(ComponentArchive, s.archive.HealthCheck)
	}
	if s.llm != nil {
		probe(ComponentLLM, s.llm.HealthCheck)
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case len(checks) > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
