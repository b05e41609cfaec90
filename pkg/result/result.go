// Package result tracks the progress and outcome of a resiliency run.
package result

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kyokomi/emoji"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// RunState is the accumulator of a run, owned by the runner and updated between failure cases
type RunState struct {
	Scenario       types.ScenarioName
	Phase          types.Phase
	Position       int
	CasesTotal     int
	CasesRun       int
	HealthPasses   int
	HealthFailures int
	MethodCounts   map[types.FailureMethod]int
	HealthErrors   *multierror.Error
	Verdict        string
	FailStep       string
	ErrorCode      cerrors.ErrorType
	StartTime      time.Time
	EndTime        time.Time
}

// NewRunState returns the state of a run that has not started yet
func NewRunState(scenario types.ScenarioName, casesTotal int) *RunState {
	return &RunState{
		Scenario:     scenario,
		Phase:        types.PhaseReady,
		CasesTotal:   casesTotal,
		MethodCounts: map[types.FailureMethod]int{},
		Verdict:      types.AwaitedVerdict,
		StartTime:    time.Now(),
	}
}

// RecordCase counts an injected failure case
func (s *RunState) RecordCase(method types.FailureMethod) {
	s.CasesRun++
	s.MethodCounts[method]++
}

// RecordHealth counts the result of a post-injection health check
func (s *RunState) RecordHealth(err error) {
	if err == nil {
		s.HealthPasses++
		return
	}
	s.HealthFailures++
	s.HealthErrors = multierror.Append(s.HealthErrors, err)
}

// RecordAfterFailure ends the run with the given verdict at the failed step
func (s *RunState) RecordAfterFailure(verdict, failStep string, err error) {
	var reason string
	var code cerrors.ErrorType
	if err != nil {
		reason, code = cerrors.GetRootCauseAndErrorCode(err)
	}
	s.Verdict = verdict
	s.FailStep = failStep
	s.ErrorCode = code
	s.Phase = types.PhaseComplete
	s.EndTime = time.Now()
	log.ErrorWithValues("[Failure]: Resiliency run failed", log.Fields{
		"Scenario":  s.Scenario,
		"FailStep":  failStep,
		"Position":  s.Position,
		"ErrorCode": code,
		"Reason":    reason,
	})
}

// Complete ends the run after every failure case ran
func (s *RunState) Complete() {
	s.Phase = types.PhaseComplete
	s.EndTime = time.Now()
	if s.HealthFailures > 0 {
		s.Verdict = types.FailVerdict
		s.FailStep = HealthCheckPostChaos
		return
	}
	s.Verdict = types.PassVerdict
}

// RunSummary is the read-only report of a run
type RunSummary struct {
	Scenario       types.ScenarioName
	Verdict        string
	FailStep       string
	ErrorCode      cerrors.ErrorType
	CasesTotal     int
	CasesRun       int
	HealthPasses   int
	HealthFailures int
	MethodCounts   map[types.FailureMethod]int
	HealthErrors   error
	Duration       time.Duration
}

// Summary returns the report of the run so far
func (s *RunState) Summary() *RunSummary {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	counts := make(map[types.FailureMethod]int, len(s.MethodCounts))
	for method, count := range s.MethodCounts {
		counts[method] = count
	}
	return &RunSummary{
		Scenario:       s.Scenario,
		Verdict:        s.Verdict,
		FailStep:       s.FailStep,
		ErrorCode:      s.ErrorCode,
		CasesTotal:     s.CasesTotal,
		CasesRun:       s.CasesRun,
		HealthPasses:   s.HealthPasses,
		HealthFailures: s.HealthFailures,
		MethodCounts:   counts,
		HealthErrors:   s.HealthErrors.ErrorOrNil(),
		Duration:       end.Sub(s.StartTime).Round(time.Second),
	}
}

// VerdictMessage returns the verdict decorated for the run log
func (r *RunSummary) VerdictMessage() string {
	switch r.Verdict {
	case types.PassVerdict:
		return r.Verdict + emoji.Sprint(" :thumbsup:")
	case types.StoppedVerdict:
		return r.Verdict + emoji.Sprint(" :octagonal_sign:")
	default:
		return r.Verdict + emoji.Sprint(" :thumbsdown:")
	}
}

// Log prints the summary of the run
func (r *RunSummary) Log() {
	fields := log.Fields{
		"Scenario":        r.Scenario,
		"Verdict":         r.VerdictMessage(),
		"Failure Cases":   fmt.Sprintf("%d/%d", r.CasesRun, r.CasesTotal),
		"Health Passes":   r.HealthPasses,
		"Health Failures": r.HealthFailures,
		"Methods":         r.MethodCounts,
		"Duration":        r.Duration,
	}
	if r.FailStep != "" {
		fields["FailStep"] = r.FailStep
	}
	if r.ErrorCode != "" {
		fields["ErrorCode"] = r.ErrorCode
	}
	log.InfoWithValues("[The End]: Resiliency run summary", fields)
}
