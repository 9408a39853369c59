// Package doctor runs the diagnostic checks behind 'emgscope doctor': is
// there a usable config, can the link address be reached, and is the
// metrics port free.
package doctor

import (
	"context"
	"fmt"
)

// Check categories, in report order.
const (
	CategoryConfig  = "CONFIG"
	CategoryLink    = "LINK"
	CategorySSH     = "SSH"
	CategoryMetrics = "METRICS"
)

// Categories lists the categories in the order the report prints them.
var Categories = []string{CategoryConfig, CategoryLink, CategorySSH, CategoryMetrics}

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "LINK").
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult
}

// RunAll executes the checks in order and returns their results.
// Checks that dial out honor ctx.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run(ctx)
	}
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pass(name, format string, args ...interface{}) CheckResult {
	return CheckResult{Name: name, Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

func warn(name, suggestion, format string, args ...interface{}) CheckResult {
	return CheckResult{Name: name, Status: StatusWarn, Message: fmt.Sprintf(format, args...), Suggestion: suggestion}
}

func fail(name, suggestion, format string, args ...interface{}) CheckResult {
	return CheckResult{Name: name, Status: StatusFail, Message: fmt.Sprintf(format, args...), Suggestion: suggestion}
}
