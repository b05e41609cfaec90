package gcp

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/retry"
	"google.golang.org/api/compute/v1"
)

// PlatformName is the registry key of the GCP platform
const PlatformName = "gcp"

const (
	statusRunning    = "RUNNING"
	statusTerminated = "TERMINATED"
)

// Platform drives cluster nodes running as GCE VM instances
type Platform struct {
	platform.NodeResolver
	instances instancesAPI
	projectID string
	zones     []string
	settle    time.Duration
	wait      platform.WaitFunc

	stateTimeout time.Duration
	stateDelay   time.Duration
}

// New is the platform.Factory of the GCP platform
func New(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	if details.GCP.ProjectID == "" || len(details.GCP.Zones) == 0 {
		return nil, cerrors.Error{ErrorCode: cerrors.ErrorTypeGeneric, Reason: "GCP_PROJECT_ID and GCP_ZONES must be set"}
	}
	computeService, err := NewComputeService(context.Background(), details.GCP)
	if err != nil {
		return nil, err
	}
	return newPlatform(computeInstances{service: computeService}, details.GCP, resolver, platform.SettleInterval(details)), nil
}

func newPlatform(instances instancesAPI, details types.GCPDetails, resolver platform.NodeResolver, settle time.Duration) *Platform {
	return &Platform{
		NodeResolver: resolver,
		instances:    instances,
		projectID:    details.ProjectID,
		zones:        details.Zones,
		settle:       settle,
		wait:         common.WaitForDuration,
		stateTimeout: 10 * time.Minute,
		stateDelay:   10 * time.Second,
	}
}

func (p *Platform) Name() string {
	return PlatformName
}

// findInstance searches every configured zone for the instance owning the network ip
func (p *Platform) findInstance(ctx context.Context, ip string) (*compute.Instance, string, error) {
	for _, zone := range p.zones {
		instances, err := p.instances.List(ctx, p.projectID, zone)
		if err != nil {
			return nil, "", errors.Errorf("failed to list instances of zone %s: %v", zone, err)
		}
		for _, instance := range instances {
			for _, nic := range instance.NetworkInterfaces {
				if nic.NetworkIP == ip {
					return instance, zone, nil
				}
			}
		}
	}
	return nil, "", cerrors.Error{
		ErrorCode: cerrors.ErrorTypeTargetSelection,
		Reason:    "no VM instance found with the node address",
		Target:    fmt.Sprintf("{ip: %s, zones: %v}", ip, p.zones),
	}
}

// SetNodePower starts or stops the VM instance of the node and waits for the final status
func (p *Platform) SetNodePower(ctx context.Context, address string, on bool) error {
	instance, zone, err := p.findInstance(ctx, address)
	if err != nil {
		return err
	}

	want := statusTerminated
	if on {
		want = statusRunning
	}
	if instance.Status == want {
		log.Infof("[Info]: VM instance %v of node %v is already %v", instance.Name, address, want)
		return nil
	}

	log.InfoWithValues("[Chaos]: Changing VM instance power state", log.Fields{
		"InstanceName": instance.Name,
		"InstanceZone": zone,
		"To":           want,
	})
	if on {
		err = p.instances.Start(ctx, p.projectID, zone, instance.Name)
	} else {
		err = p.instances.Stop(ctx, p.projectID, zone, instance.Name)
	}
	if err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{vmName: %s, zone: %s}", instance.Name, zone), Reason: err.Error()}
	}

	return retry.
		Times(uint(p.stateTimeout / p.stateDelay)).
		Wait(p.stateDelay).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			current, err := p.instances.Get(ctx, p.projectID, zone, instance.Name)
			if err != nil {
				return err
			}
			if current.Status != want {
				log.Infof("[Info]: %s instance state is %s", instance.Name, current.Status)
				return errors.Errorf("%s vm instance is not yet in %s state", instance.Name, want)
			}
			return nil
		})
}

func (p *Platform) RebootNode(ctx context.Context, address string) error {
	return platform.Reboot(ctx, p, address, p.settle, p.wait)
}

func (p *Platform) SetNodeNetworkInterface(context.Context, string, types.NodeRole, bool) error {
	return cerrors.NotImplemented(PlatformName, "SetNodeNetworkInterface")
}

func (p *Platform) NetworkSplit(context.Context, []string) (func(context.Context) error, error) {
	return nil, cerrors.NotImplemented(PlatformName, "NetworkSplit")
}
