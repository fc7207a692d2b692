package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search works but suggestions will not.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates a reachable but empty dictionary.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine     EnginePinger
	dictionary DictionaryCounter
	dictIndex  string
}

// New creates a Service. dictionary can be nil to skip the dictionary check.
func New(engine EnginePinger, dictionary DictionaryCounter, dictIndex string) *Service {
	return &Service{engine: engine, dictionary: dictionary, dictIndex: dictIndex}
}

// Check pings the engine and, when it answers, checks the suggestion dictionary.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.engine.Ping(ctx); err != nil {
		checks["search_engine"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["search_engine"] = CheckOK

	status := Healthy
	if s.dictionary != nil {
		n, err := s.dictionary.Count(ctx, "", s.dictIndex)
		switch {
		case err != nil:
			checks["suggest_dictionary"] = CheckError
			status = Degraded
		case n == 0:
			checks["suggest_dictionary"] = CheckEmpty
			status = Degraded
		default:
			checks["suggest_dictionary"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
