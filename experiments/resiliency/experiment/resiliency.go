package experiment

import (
	"context"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/config"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/scenario"
	"github.com/red-hat-storage/ocs-resiliency/pkg/result"
	"github.com/red-hat-storage/ocs-resiliency/pkg/status"
	"github.com/red-hat-storage/ocs-resiliency/pkg/telemetry"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"go.opentelemetry.io/otel/attribute"
)

// Dependencies are the collaborators of a resiliency run, built once at process start
type Dependencies struct {
	Cluster   platform.ClusterPlatform
	Health    status.HealthChecker
	Config    *config.ResiliencyConfig
	ConfigDir string
	Options   scenario.Options
	Metrics   *telemetry.Metrics
}

// CleanupFunc is a teardown step run by Cleanup
type CleanupFunc func(ctx context.Context) error

// Resiliency injects the failure cases of one scenario one after the other,
// checking the cluster health after each of them
type Resiliency struct {
	ScenarioName types.ScenarioName
	failures     *config.ResiliencyFailures
	deps         Dependencies
	cleanups     []CleanupFunc
	state        *result.RunState
}

// NewResiliency resolves the scenario and loads its failure cases, optionally filtered by failureMethod.
// Unsupported scenarios are rejected before anything is loaded, invalid cases before anything is injected.
func NewResiliency(scenarioName, failureMethod string, deps Dependencies) (*Resiliency, error) {
	name := types.NormalizeScenarioName(scenarioName)
	constructor, err := constructorFor(name)
	if err != nil {
		return nil, err
	}

	if deps.Config == nil {
		cfg, err := config.LoadResiliencyConfig(deps.ConfigDir)
		if err != nil {
			return nil, err
		}
		deps.Config = cfg
	}

	failures, err := config.NewResiliencyFailures(deps.ConfigDir, name, failureMethod)
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not load the failure cases of scenario %s", name)
	}

	// constructors only validate, so every case is checked before the first one is injected
	for index, failureCase := range failures.All() {
		if _, err := constructor(failureCase, deps.Cluster, deps.Options); err != nil {
			return nil, stacktrace.Propagate(err, "failure case %d %v of scenario %s is invalid", index, failureCase, name)
		}
	}

	return &Resiliency{
		ScenarioName: name,
		failures:     failures,
		deps:         deps,
		state:        result.NewRunState(name, failures.Failures().Len()),
	}, nil
}

// Failures returns the failure cases the run iterates over
func (r *Resiliency) Failures() types.FailureCaseList {
	return r.failures.Failures()
}

// State returns the run accumulator
func (r *Resiliency) State() *result.RunState {
	return r.state
}

// AddCleanup registers a teardown step, steps run in reverse registration order
func (r *Resiliency) AddCleanup(fn CleanupFunc) {
	r.cleanups = append(r.cleanups, fn)
}

// Start injects every failure case in order and checks the cluster health after each one.
// Injection errors end the run. A failed health check ends the run only when
// STOP_WHEN_CEPH_UNHEALTHY is set, otherwise it is recorded and the run goes on.
func (r *Resiliency) Start(ctx context.Context) (*result.RunSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "RunResiliencyScenario")
	defer span.End()
	span.SetAttributes(attribute.String("scenario", string(r.ScenarioName)))

	r.state = result.NewRunState(r.ScenarioName, r.failures.Failures().Len())
	defer func() { r.state.Summary().Log() }()
	r.deps.Metrics.SetRunInProgress(true)
	defer r.deps.Metrics.SetRunInProgress(false)

	log.InfoWithValues("[Info]: Starting resiliency run", log.Fields{
		"Scenario":              r.ScenarioName,
		"Workload":              r.failures.Workload(),
		"Failure Cases":         r.state.CasesTotal,
		"StopWhenCephUnhealthy": r.deps.Config.RunConfig.StopWhenCephUnhealthy,
	})
	if r.state.CasesTotal == 0 {
		log.Warnf("No failure cases to run for scenario '%v'", r.ScenarioName)
	}

	for index, failureCase := range r.failures.All() {
		r.state.Position = index
		if err := ctx.Err(); err != nil {
			r.state.RecordAfterFailure(types.FailVerdict, result.RunInterrupted, err)
			return r.state.Summary(), stacktrace.Propagate(err, "resiliency run of %s interrupted", r.ScenarioName)
		}

		r.state.Phase = types.PhaseInject
		failure, err := r.injectFailure(ctx, failureCase)
		if err != nil {
			failStep := result.FailureInjection
			if failure == nil {
				failStep = result.FailureCaseValidation
			}
			r.state.RecordAfterFailure(types.FailVerdict, failStep, err)
			telemetry.RecordError(span, err, failStep)
			return r.state.Summary(), err
		}
		r.state.RecordCase(failureCase.Method)

		r.state.Phase = types.PhaseCheck
		if err := r.postScenarioCheck(ctx, failure); err != nil {
			r.state.RecordHealth(err)
			if r.deps.Config.RunConfig.StopWhenCephUnhealthy {
				log.Errorf("[Status]: Cluster is unhealthy after failure case %v, stopping the run as STOP_WHEN_CEPH_UNHEALTHY is set", failureCase)
				r.state.RecordAfterFailure(types.StoppedVerdict, result.HealthCheckPostChaos, err)
				telemetry.RecordError(span, err, result.HealthCheckPostChaos)
				return r.state.Summary(), err
			}
			log.ErrorWithValues("[Status]: Cluster is unhealthy after the failure case, continuing with the next one", log.Fields{
				"Scenario":      r.ScenarioName,
				"FailureMethod": failureCase.Method,
				"Error":         err,
			})
			continue
		}
		r.state.RecordHealth(nil)
	}

	r.state.Complete()
	return r.state.Summary(), nil
}

// injectFailure runs one failure case, the scenario is nil when the case was rejected before injection
func (r *Resiliency) injectFailure(ctx context.Context, failureCase types.FailureCase) (scenario.FailureScenario, error) {
	ctx, span := telemetry.StartSpan(ctx, "InjectFailureCase")
	defer span.End()
	span.SetAttributes(
		attribute.String("scenario", string(r.ScenarioName)),
		attribute.String("failure.method", string(failureCase.Method)),
	)

	log.InfoWithValues("[Chaos]: Running failure case", log.Fields{
		"Scenario":      r.ScenarioName,
		"FailureMethod": failureCase.Method,
		"Parameters":    failureCase.Raw,
		"Platform":      r.deps.Cluster.Name(),
	})

	start := time.Now()
	failure, err := RunFailureCase(ctx, r.ScenarioName, failureCase, r.deps.Cluster, r.deps.Options)
	r.deps.Metrics.RecordFailureCase(ctx, string(r.ScenarioName), string(failureCase.Method), time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err, "failure case injection failed")
		log.ErrorWithValues("[Chaos]: Failure case failed", log.Fields{
			"Scenario":      r.ScenarioName,
			"FailureMethod": failureCase.Method,
			"Parameters":    failureCase.Raw,
			"Error":         err,
		})
		return failure, err
	}

	log.InfoWithValues("[Chaos]: Failure case completed", log.Fields{
		"Scenario":      r.ScenarioName,
		"FailureMethod": failureCase.Method,
		"Parameters":    failureCase.Raw,
		"Duration":      time.Since(start).Round(time.Second),
	})
	return failure, nil
}

// postScenarioCheck waits for the cluster to report healthy within the budget of the scenario
func (r *Resiliency) postScenarioCheck(ctx context.Context, failure scenario.FailureScenario) error {
	budget, ok := failure.HealthBudget()
	if !ok {
		budget = r.deps.Config.HealthBudget()
	}

	log.Infof("[Status]: Checking Ceph health, budget %v", budget)
	err := r.deps.Health.CheckHealth(ctx, budget.Tries, budget.Delay)
	r.deps.Metrics.RecordHealthCheck(ctx, string(r.ScenarioName), err)
	if err != nil {
		if !cerrors.IsType(err, cerrors.ErrorTypeHealthCheckFailed) {
			err = cerrors.Error{
				ErrorCode: cerrors.ErrorTypeHealthCheckFailed,
				Phase:     string(types.PhaseCheck),
				Reason:    err.Error(),
				Target:    string(r.ScenarioName),
			}
		}
		return err
	}
	log.Info("[Status]: Ceph health is OK")
	return nil
}

// Cleanup runs the registered teardown steps, failures are logged and never returned
func (r *Resiliency) Cleanup(ctx context.Context) {
	log.Info("[Cleanup]: Cleaning up after the scenario")
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		if err := r.cleanups[i](ctx); err != nil {
			log.Errorf("[Cleanup]: Cleanup step failed, err: %v", err)
		}
	}
	r.cleanups = nil
}
