package ibmcloud

import (
	"context"
	"fmt"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
)

// PlatformName is the registry key of the IBM Cloud platform
const PlatformName = "ibmcloud"

// Platform drives cluster nodes running as IBM Cloud VPC instances
type Platform struct {
	platform.NodeResolver
	vpcService vpcAPI
	settle     time.Duration
	wait       platform.WaitFunc

	stateTimeout time.Duration
	stateDelay   time.Duration
}

// New is the platform.Factory of the IBM Cloud platform
func New(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	vpcService, err := NewVPCService(details.IBMCloud)
	if err != nil {
		return nil, err
	}
	return newPlatform(vpcService, resolver, platform.SettleInterval(details)), nil
}

func newPlatform(vpcService vpcAPI, resolver platform.NodeResolver, settle time.Duration) *Platform {
	return &Platform{
		NodeResolver: resolver,
		vpcService:   vpcService,
		settle:       settle,
		wait:         common.WaitForDuration,
		stateTimeout: 10 * time.Minute,
		stateDelay:   10 * time.Second,
	}
}

func (p *Platform) Name() string {
	return PlatformName
}

// SetNodePower starts or stops the instance of the node and waits for the final status
func (p *Platform) SetNodePower(ctx context.Context, address string, on bool) error {
	instance, err := GetInstanceByIP(ctx, p.vpcService, address)
	if err != nil {
		return err
	}
	instanceID := *instance.ID

	action, want := "stop", instanceStatusStopped
	if on {
		action, want = "start", instanceStatusRunning
	}
	if instance.Status != nil && *instance.Status == want {
		log.Infof("[Info]: Instance %v of node %v is already %v", instanceID, address, want)
		return nil
	}

	log.InfoWithValues("[Chaos]: Changing instance power state", log.Fields{
		"InstanceId": instanceID,
		"Address":    address,
		"Action":     action,
	})
	if err := InstanceAction(ctx, p.vpcService, instanceID, action); err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{instanceID: %s}", instanceID), Reason: err.Error()}
	}
	return WaitForInstanceStatus(ctx, p.vpcService, instanceID, want, p.stateTimeout, p.stateDelay)
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
