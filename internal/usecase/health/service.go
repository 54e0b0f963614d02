package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Unhealthy indicates the storage root cannot be used.
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

// Report aggregates health check results.
type Report struct {
	Status  Status                 `json:"status"`
	Checks  map[string]CheckResult `json:"checks"`
	Workers int                    `json:"workers"`
}

// Service coordinates health checks.
type Service struct {
	storage StoragePinger
	workers int
}

// New creates a Service reporting the configured worker count.
func New(storage StoragePinger, workers int) *Service {
	return &Service{storage: storage, workers: workers}
}

// Check runs the storage check.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"storage": CheckOK}
	status := Healthy
	if err := s.storage.Ping(ctx); err != nil {
		checks["storage"] = CheckError
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks, Workers: s.workers}
}
