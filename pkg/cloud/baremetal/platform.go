package baremetal

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
)

// PlatformName is the registry key of the bare-metal platform
const PlatformName = "baremetal"

// Platform drives bare-metal cluster nodes through their Redfish BMC
type Platform struct {
	platform.NodeResolver
	inventory Inventory
	redfish   *RedfishClient
	settle    time.Duration
	wait      platform.WaitFunc

	stateTimeout time.Duration
	stateDelay   time.Duration
}

// New is the platform.Factory of the bare-metal platform
func New(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	inventory, err := LoadInventory(details.BMCInventory)
	if err != nil {
		return nil, err
	}
	return newPlatform(inventory, NewRedfishClient(), resolver, platform.SettleInterval(details)), nil
}

func newPlatform(inventory Inventory, redfish *RedfishClient, resolver platform.NodeResolver, settle time.Duration) *Platform {
	return &Platform{
		NodeResolver: resolver,
		inventory:    inventory,
		redfish:      redfish,
		settle:       settle,
		wait:         common.WaitForDuration,
		stateTimeout: 5 * time.Minute,
		stateDelay:   5 * time.Second,
	}
}

func (p *Platform) Name() string {
	return PlatformName
}

// SetNodePower powers the node on or off through its BMC and waits for the power state
func (p *Platform) SetNodePower(ctx context.Context, address string, on bool) error {
	bmc, err := p.inventory.Lookup(address)
	if err != nil {
		return err
	}
	state, err := p.redfish.GetPowerState(ctx, bmc)
	if err != nil {
		return err
	}

	want, resetType := powerStateOff, resetTypeForceOff
	if on {
		want, resetType = powerStateOn, resetTypeOn
	}
	if state == want {
		log.Infof("[Info]: Node %v is already powered %v", address, state)
		return nil
	}

	log.InfoWithValues("[Chaos]: Resetting node through BMC", log.Fields{
		"Node":      address,
		"BMC":       bmc.Address,
		"ResetType": resetType,
	})
	if err := p.redfish.Reset(ctx, bmc, resetType); err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{node: %s, bmc: %s}", address, bmc.Address), Reason: err.Error()}
	}

	return retry.
		Times(uint(p.stateTimeout / p.stateDelay)).
		Wait(p.stateDelay).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			current, err := p.redfish.GetPowerState(ctx, bmc)
			if err != nil {
				return err
			}
			if current != want {
				return errors.Errorf("node %s is not yet powered %s, current state: %s", address, want, current)
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
