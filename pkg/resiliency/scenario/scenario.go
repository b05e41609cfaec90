// Package scenario holds what every failure scenario shares: the FailureScenario contract,
// its construction options and the phase state machine.
package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
)

// DefaultOutageDuration is how long a node stays cut off when the case does not set DURATION
const DefaultOutageDuration = 60 * time.Second

// FailureScenario injects one failure case against the cluster.
// It moves IDLE -> INJECTING -> RECOVERING -> DONE and is not reused across cases.
type FailureScenario interface {
	Name() types.ScenarioName
	FailureCase() types.FailureCase
	Phase() types.Phase
	// Run injects the failure and returns once the infrastructure has been restored
	Run(ctx context.Context) error
	// HealthBudget returns the post-injection health check budget of the scenario, if it has its own
	HealthBudget() (types.HealthBudget, bool)
}

// Constructor validates a failure case and binds it to a scenario
type Constructor func(failureCase types.FailureCase, cluster platform.ClusterPlatform, opts Options) (FailureScenario, error)

// Operation is the bound, argument-less injection of a failure case
type Operation func(ctx context.Context) error

// Options tunes the scenario timings
type Options struct {
	OutageDuration time.Duration
	Wait           platform.WaitFunc
}

// WithDefaults fills the unset options
func (o Options) WithDefaults() Options {
	if o.OutageDuration <= 0 {
		o.OutageDuration = DefaultOutageDuration
	}
	if o.Wait == nil {
		o.Wait = common.WaitForDuration
	}
	return o
}

// Hold returns the outage window of the case, DURATION when set, the option otherwise
func (o Options) Hold(params types.FailureParameters) time.Duration {
	if params.Duration != nil && *params.Duration > 0 {
		return time.Duration(*params.Duration) * time.Second
	}
	return o.OutageDuration
}

// State is the phase of a scenario, safe to read while the scenario runs
type State struct {
	mu    sync.RWMutex
	phase types.Phase
}

// Phase returns the current phase, IDLE before the first transition
func (s *State) Phase() types.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase == "" {
		return types.PhaseIdle
	}
	return s.phase
}

// SetPhase moves the scenario to the given phase
func (s *State) SetPhase(phase types.Phase) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

// UnsupportedFailureMethod returns the error for a method the scenario has no operation for
func UnsupportedFailureMethod(scenario types.ScenarioName, method types.FailureMethod) error {
	return cerrors.Error{
		ErrorCode: cerrors.ErrorTypeUnsupportedFailureMethod,
		Reason:    fmt.Sprintf("failure method '%s' is not supported by scenario '%s'", method, scenario),
		Target:    fmt.Sprintf("{scenario: %s, failureMethod: %s}", scenario, method),
	}
}

// InvalidParameter returns the error for a failure case parameter that cannot be used
func InvalidParameter(scenario types.ScenarioName, method types.FailureMethod, reason string) error {
	return cerrors.Error{
		ErrorCode: cerrors.ErrorTypeGeneric,
		Phase:     string(types.PhaseIdle),
		Reason:    reason,
		Target:    fmt.Sprintf("{scenario: %s, failureMethod: %s}", scenario, method),
	}
}

// ValidateRoles checks that every role in the list is known
func ValidateRoles(roles []types.NodeRole) error {
	for _, role := range roles {
		if !role.Valid() {
			return fmt.Errorf("unknown node role '%s', expected %s or %s", role, types.MasterRole, types.WorkerRole)
		}
	}
	return nil
}
