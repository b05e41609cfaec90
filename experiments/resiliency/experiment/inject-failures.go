package experiment

import (
	"context"
	"fmt"
	"sort"

	networkFailures "github.com/red-hat-storage/ocs-resiliency/chaoslib/resiliency/network-failures/lib"
	nodeFailures "github.com/red-hat-storage/ocs-resiliency/chaoslib/resiliency/node-failures/lib"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/scenario"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// InjectFailures maps every supported scenario onto the constructor of its failure scenario
var InjectFailures = map[types.ScenarioName]scenario.Constructor{
	types.NodeFailures:    nodeFailures.NewNodeFailures,
	types.NetworkFailures: networkFailures.NewNetworkFailures,
}

// SupportedScenarios returns the supported scenario names in sorted order
func SupportedScenarios() []types.ScenarioName {
	names := make([]types.ScenarioName, 0, len(InjectFailures))
	for name := range InjectFailures {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func unsupportedScenario(name types.ScenarioName) error {
	return cerrors.Error{
		ErrorCode: cerrors.ErrorTypeUnsupportedScenario,
		Phase:     string(types.PhaseReady),
		Reason:    fmt.Sprintf("no implementation for scenario '%s', supported scenarios: %v", name, SupportedScenarios()),
		Target:    fmt.Sprintf("{scenario: %s}", name),
	}
}

func constructorFor(name types.ScenarioName) (scenario.Constructor, error) {
	constructor, ok := InjectFailures[name]
	if !ok {
		return nil, unsupportedScenario(name)
	}
	return constructor, nil
}

// RunFailureCase builds the failure scenario of the case and runs it synchronously
func RunFailureCase(ctx context.Context, name types.ScenarioName, failureCase types.FailureCase, cluster platform.ClusterPlatform, opts scenario.Options) (scenario.FailureScenario, error) {
	constructor, err := constructorFor(name)
	if err != nil {
		return nil, err
	}
	failure, err := constructor(failureCase, cluster, opts)
	if err != nil {
		return nil, err
	}
	log.Infof("[Chaos]: Injecting failure into the cluster for scenario '%v'", name)
	return failure, failure.Run(ctx)
}
