package experiment

import (
	"context"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/result"
)

// RunScenarios runs the FAILURE_SCENARIOS of the run config: all of them in order when
// ITERATE_SCENARIOS is set, only the first one otherwise. It stops at the first run that errors.
func RunScenarios(ctx context.Context, failureMethod string, deps Dependencies) ([]*result.RunSummary, error) {
	if deps.Config == nil {
		return nil, cerrors.Error{ErrorCode: cerrors.ErrorTypeGeneric, Reason: "no run configuration loaded"}
	}

	scenarios := deps.Config.FailureScenarios
	if len(scenarios) == 0 {
		log.Warn("No FAILURE_SCENARIOS configured, nothing to run")
		return nil, nil
	}
	if !deps.Config.RunConfig.IterateScenarios {
		scenarios = scenarios[:1]
	}

	// every scenario is loaded and validated up front so a bad one fails before any injection
	runs := make([]*Resiliency, 0, len(scenarios))
	for _, name := range scenarios {
		r, err := NewResiliency(string(name), failureMethod, deps)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	var summaries []*result.RunSummary
	for _, r := range runs {
		summary, err := runScenario(ctx, r)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

func runScenario(ctx context.Context, r *Resiliency) (*result.RunSummary, error) {
	log.Infof("[Info]: Running resiliency scenario %v", r.ScenarioName)
	defer r.Cleanup(context.WithoutCancel(ctx))
	return r.Start(ctx)
}
