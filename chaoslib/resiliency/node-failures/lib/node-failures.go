package lib

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/scenario"
	"github.com/red-hat-storage/ocs-resiliency/pkg/telemetry"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"go.opentelemetry.io/otel/attribute"
)

const (
	healthCheckTries = 45
	healthCheckDelay = 60 * time.Second
)

// NodeFailures reboots or drains cluster nodes
type NodeFailures struct {
	scenario.State
	failureCase types.FailureCase
	cluster     platform.ClusterPlatform
	opts        scenario.Options
	operation   scenario.Operation

	pickRole func([]types.NodeRole) types.NodeRole
}

// NewNodeFailures validates the failure case and binds its operation.
// No platform call is made before the case has been validated.
func NewNodeFailures(failureCase types.FailureCase, cluster platform.ClusterPlatform, opts scenario.Options) (scenario.FailureScenario, error) {
	nf := &NodeFailures{
		failureCase: failureCase,
		cluster:     cluster,
		opts:        opts.WithDefaults(),
		pickRole:    randomRole,
	}

	switch failureCase.Method {
	case types.FailureMethodPowerOffNode:
		if err := validatePowerOff(failureCase.Parameters); err != nil {
			return nil, scenario.InvalidParameter(types.NodeFailures, failureCase.Method, err.Error())
		}
		nf.operation = nf.runPowerOffNode
	case types.FailureMethodNodeDrain:
		nf.operation = nf.runNodeDrain
	default:
		return nil, scenario.UnsupportedFailureMethod(types.NodeFailures, failureCase.Method)
	}
	return nf, nil
}

func validatePowerOff(params types.FailureParameters) error {
	if len(params.NodeType) == 0 {
		return fmt.Errorf("NODE_TYPE must list at least one node role")
	}
	if err := scenario.ValidateRoles(params.NodeType); err != nil {
		return err
	}
	if params.Iteration == nil {
		return fmt.Errorf("ITERATION is required")
	}
	if *params.Iteration < 0 {
		return fmt.Errorf("ITERATION must not be negative, got %d", *params.Iteration)
	}
	return nil
}

func randomRole(roles []types.NodeRole) types.NodeRole {
	return roles[rand.IntN(len(roles))]
}

func (nf *NodeFailures) Name() types.ScenarioName {
	return types.NodeFailures
}

func (nf *NodeFailures) FailureCase() types.FailureCase {
	return nf.failureCase
}

// HealthBudget node reboots take longer to settle than the run default allows for
func (nf *NodeFailures) HealthBudget() (types.HealthBudget, bool) {
	return types.HealthBudget{Tries: healthCheckTries, Delay: healthCheckDelay}, true
}

// Run injects the bound failure
func (nf *NodeFailures) Run(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "InjectNodeFailure")
	defer span.End()
	span.SetAttributes(attribute.String("failure.method", string(nf.failureCase.Method)))

	nf.SetPhase(types.PhaseInjecting)
	defer nf.SetPhase(types.PhaseDone)

	if err := nf.operation(ctx); err != nil {
		telemetry.RecordError(span, err, "node failure injection failed")
		return err
	}
	nf.SetPhase(types.PhaseRecovering)
	log.Infof("[Info]: Running post-scenario checks for %v", nf.Name())
	return nil
}

// runPowerOffNode reboots a random node of a random configured role, ITERATION times
func (nf *NodeFailures) runPowerOffNode(ctx context.Context) error {
	log.Infof("[Chaos]: Running failure case: %v", types.FailureMethodPowerOffNode)
	params := nf.failureCase.Parameters

	for i := 0; i < *params.Iteration; i++ {
		role := nf.pickRole(params.NodeType)
		address, err := nf.cluster.RandomNodeAddress(ctx, role)
		if err != nil {
			return stacktrace.Propagate(err, "could not select a %s node", role)
		}

		log.InfoWithValues("[Chaos]: Rebooting node", log.Fields{
			"Role":      role,
			"Node":      address,
			"Iteration": fmt.Sprintf("%d/%d", i+1, *params.Iteration),
		})
		if err := nf.cluster.RebootNode(ctx, address); err != nil {
			return stacktrace.Propagate(err, "could not reboot %s node %s", role, address)
		}
		log.Infof("[Info]: %v node %v rebooted", role, address)
	}
	return nil
}

func (nf *NodeFailures) runNodeDrain(context.Context) error {
	log.Infof("[Chaos]: Running failure case: %v", types.FailureMethodNodeDrain)
	log.Info("[Info]: Draining node...")
	return nil
}
