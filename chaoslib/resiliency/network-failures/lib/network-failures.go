package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/scenario"
	"github.com/red-hat-storage/ocs-resiliency/pkg/telemetry"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
	"go.opentelemetry.io/otel/attribute"
)

// nodeNetworkDownRoles are cut off one after the other, masters first
var nodeNetworkDownRoles = []types.NodeRole{types.MasterRole, types.WorkerRole}

// NetworkFailures cuts cluster nodes off the network for an outage window
type NetworkFailures struct {
	scenario.State
	failureCase types.FailureCase
	cluster     platform.ClusterPlatform
	opts        scenario.Options
	operation   scenario.Operation

	splitRoles []types.NodeRole
	splitCount int
}

// NewNetworkFailures validates the failure case and binds its operation
func NewNetworkFailures(failureCase types.FailureCase, cluster platform.ClusterPlatform, opts scenario.Options) (scenario.FailureScenario, error) {
	nf := &NetworkFailures{
		failureCase: failureCase,
		cluster:     cluster,
		opts:        opts.WithDefaults(),
	}

	switch failureCase.Method {
	case types.FailureMethodPodNetworkFailure:
		nf.operation = nf.runPodNetworkFailure
	case types.FailureMethodNodeNetworkDown:
		nf.operation = nf.runNodeNetworkDown
	case types.FailureMethodNetworkSplit:
		if err := nf.validateNetworkSplit(); err != nil {
			return nil, scenario.InvalidParameter(types.NetworkFailures, failureCase.Method, err.Error())
		}
		nf.operation = nf.runNetworkSplit
	default:
		return nil, scenario.UnsupportedFailureMethod(types.NetworkFailures, failureCase.Method)
	}
	return nf, nil
}

func (nf *NetworkFailures) validateNetworkSplit() error {
	params := nf.failureCase.Parameters

	nf.splitRoles = params.NodeType
	if len(nf.splitRoles) == 0 {
		nf.splitRoles = []types.NodeRole{types.WorkerRole}
	}
	if err := scenario.ValidateRoles(nf.splitRoles); err != nil {
		return err
	}

	nf.splitCount = 1
	if params.NodeCount != nil {
		if *params.NodeCount < 1 {
			return fmt.Errorf("NODE_COUNT must be at least 1, got %d", *params.NodeCount)
		}
		nf.splitCount = *params.NodeCount
	}
	return nil
}

func (nf *NetworkFailures) Name() types.ScenarioName {
	return types.NetworkFailures
}

func (nf *NetworkFailures) FailureCase() types.FailureCase {
	return nf.failureCase
}

// HealthBudget network failures use the run default
func (nf *NetworkFailures) HealthBudget() (types.HealthBudget, bool) {
	return types.HealthBudget{}, false
}

// Run injects the bound failure
func (nf *NetworkFailures) Run(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "InjectNetworkFailure")
	defer span.End()
	span.SetAttributes(attribute.String("failure.method", string(nf.failureCase.Method)))

	nf.SetPhase(types.PhaseInjecting)
	defer nf.SetPhase(types.PhaseDone)

	if err := nf.operation(ctx); err != nil {
		telemetry.RecordError(span, err, "network failure injection failed")
		return err
	}
	return nil
}

func (nf *NetworkFailures) runPodNetworkFailure(context.Context) error {
	log.Infof("[Chaos]: Running failure case: %v", types.FailureMethodPodNetworkFailure)
	log.Info("[Info]: Bringing down pod network interface")
	return nil
}

// runNodeNetworkDown cuts a random master, then a random worker, off the network for the outage window
func (nf *NetworkFailures) runNodeNetworkDown(ctx context.Context) error {
	log.Infof("[Chaos]: Running failure case: %v", types.FailureMethodNodeNetworkDown)
	hold := nf.opts.Hold(nf.failureCase.Parameters)

	for _, role := range nodeNetworkDownRoles {
		address, err := nf.cluster.RandomNodeAddress(ctx, role)
		if err != nil {
			return stacktrace.Propagate(err, "could not select a %s node", role)
		}
		if err := nf.disconnectNode(ctx, address, role, hold); err != nil {
			return err
		}
	}
	return nil
}

// disconnectNode disconnects the node and reconnects it once the hold ends, whatever way it ends
func (nf *NetworkFailures) disconnectNode(ctx context.Context, address string, role types.NodeRole, hold time.Duration) (err error) {
	log.InfoWithValues("[Chaos]: Bringing down node network interfaces", log.Fields{
		"Role":   role,
		"Node":   address,
		"Outage": hold,
	})
	if err := nf.cluster.SetNodeNetworkInterface(ctx, address, role, false); err != nil {
		return stacktrace.Propagate(err, "could not disconnect %s node %s", role, address)
	}
	nf.SetPhase(types.PhaseInjecting)

	defer func() {
		nf.SetPhase(types.PhaseRecovering)
		if rerr := nf.cluster.SetNodeNetworkInterface(context.WithoutCancel(ctx), address, role, true); rerr != nil {
			err = multierror.Append(err, stacktrace.Propagate(rerr, "could not reconnect %s node %s", role, address))
			return
		}
		log.Infof("[Info]: Network interface on node %v restored", address)
	}()

	log.Infof("[Wait]: Keeping node %v disconnected for %v", address, hold)
	if err := nf.opts.Wait(ctx, hold); err != nil {
		return stacktrace.Propagate(err, "outage window on node %s interrupted", address)
	}
	return nil
}

// runNetworkSplit isolates NODE_COUNT nodes of every NODE_TYPE role from the rest of the cluster
func (nf *NetworkFailures) runNetworkSplit(ctx context.Context) (err error) {
	log.Infof("[Chaos]: Running failure case: %v", types.FailureMethodNetworkSplit)
	hold := nf.opts.Hold(nf.failureCase.Parameters)

	var group []string
	for _, role := range nf.splitRoles {
		addresses, err := nf.cluster.NodeAddresses(ctx, role)
		if err != nil {
			return stacktrace.Propagate(err, "could not list %s nodes", role)
		}
		if len(addresses) < nf.splitCount {
			return scenario.InvalidParameter(types.NetworkFailures, types.FailureMethodNetworkSplit,
				fmt.Sprintf("NODE_COUNT %d exceeds the %d available %s nodes", nf.splitCount, len(addresses), role))
		}
		group = append(group, common.PickRandomN(addresses, nf.splitCount)...)
	}

	log.InfoWithValues("[Chaos]: Splitting nodes away from the cluster", log.Fields{
		"Nodes":  group,
		"Outage": hold,
	})
	restore, err := nf.cluster.NetworkSplit(ctx, group)
	if err != nil {
		return stacktrace.Propagate(err, "could not split nodes %v", group)
	}

	defer func() {
		nf.SetPhase(types.PhaseRecovering)
		if rerr := restore(context.WithoutCancel(ctx)); rerr != nil {
			err = multierror.Append(err, stacktrace.Propagate(rerr, "could not restore nodes %v", group))
			return
		}
		log.Infof("[Info]: Network split of nodes %v restored", group)
	}()

	log.Infof("[Wait]: Keeping nodes %v split for %v", group, hold)
	if err := nf.opts.Wait(ctx, hold); err != nil {
		return stacktrace.Propagate(err, "network split of nodes %v interrupted", group)
	}
	return nil
}
