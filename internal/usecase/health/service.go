package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
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

// Component names reported by Check.
const (
	ComponentDatabase  = "database"
	ComponentCache     = "cache"
	ComponentSegmenter = "segmenter"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Components returns the checked component names in sorted order.
func (r Report) Components() []string {
	out := make([]string, 0, len(r.Checks))
	for k := range r.Checks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	optional map[string]Checker
}

// Option registers an optional component.
type Option func(*Service)

// WithChecker adds an optional component check. A nil checker is ignored.
func WithChecker(name string, c Checker) Option {
	return func(s *Service) {
		if c != nil {
			s.optional[name] = c
		}
	}
}

// New creates a Service.
func New(db DBPinger, opts ...Option) *Service {
	s := &Service{db: db, optional: make(map[string]Checker)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.optional)+1)

	status := Healthy
	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentDatabase] = CheckOK
	}

	for name, c := range s.optional {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
