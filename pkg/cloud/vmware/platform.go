package vmware

import (
	"context"
	"sync"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// PlatformName is the registry key of the vSphere platform
const PlatformName = "vsphere"

// Platform drives cluster nodes running as vSphere virtual machines
type Platform struct {
	platform.NodeResolver
	finder vmFinder
	settle time.Duration
	wait   platform.WaitFunc

	mu sync.Mutex
	// VMs by node address, vCenter stops reporting the guest IP of a powered-off VM
	vms map[string]virtualMachine
}

// New is the platform.Factory of the vSphere platform
func New(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	return newPlatform(&govmomiFinder{details: details.Vsphere}, resolver, platform.SettleInterval(details)), nil
}

func newPlatform(finder vmFinder, resolver platform.NodeResolver, settle time.Duration) *Platform {
	return &Platform{
		NodeResolver: resolver,
		finder:       finder,
		settle:       settle,
		wait:         common.WaitForDuration,
		vms:          map[string]virtualMachine{},
	}
}

func (p *Platform) Name() string {
	return PlatformName
}

// lookupVM searches the VM of the node once and reuses it for later power and network changes
func (p *Platform) lookupVM(ctx context.Context, address string) (virtualMachine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vm, ok := p.vms[address]; ok {
		return vm, nil
	}
	vm, err := p.finder.FindVMByIP(ctx, address)
	if err != nil {
		return nil, err
	}
	p.vms[address] = vm
	return vm, nil
}

// SetNodePower powers the VM of the node on or off
func (p *Platform) SetNodePower(ctx context.Context, address string, on bool) error {
	vm, err := p.lookupVM(ctx, address)
	if err != nil {
		return err
	}
	state, err := vm.PowerState(ctx)
	if err != nil {
		return stacktrace.Propagate(err, "failed to get %s VM status", vm.Name())
	}

	want := vimtypes.VirtualMachinePowerStatePoweredOff
	if on {
		want = vimtypes.VirtualMachinePowerStatePoweredOn
	}
	if state == want {
		log.Infof("[Info]: VM %v of node %v is already %v", vm.Name(), address, state)
		return nil
	}

	log.InfoWithValues("[Chaos]: Changing VM power state", log.Fields{
		"VM":      vm.Name(),
		"Address": address,
		"From":    state,
		"To":      want,
	})
	if on {
		err = vm.PowerOn(ctx)
	} else {
		err = vm.PowerOff(ctx)
	}
	if err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: "{vmName: " + vm.Name() + ", address: " + address + "}", Reason: err.Error()}
	}
	return nil
}

func (p *Platform) RebootNode(ctx context.Context, address string) error {
	return platform.Reboot(ctx, p, address, p.settle, p.wait)
}

// SetNodeNetworkInterface connects or disconnects every network adapter of the VM
func (p *Platform) SetNodeNetworkInterface(ctx context.Context, address string, role types.NodeRole, connected bool) error {
	vm, err := p.lookupVM(ctx, address)
	if err != nil {
		return err
	}
	log.InfoWithValues("[Chaos]: Changing VM network state", log.Fields{
		"VM":        vm.Name(),
		"Address":   address,
		"Role":      role,
		"Connected": connected,
	})
	if err := vm.SetNetworkConnected(ctx, connected); err != nil {
		code := cerrors.ErrorTypeChaosInject
		if connected {
			code = cerrors.ErrorTypeChaosRevert
		}
		return cerrors.Error{ErrorCode: code, Target: "{vmName: " + vm.Name() + ", address: " + address + "}", Reason: err.Error()}
	}
	return nil
}

func (p *Platform) NetworkSplit(context.Context, []string) (func(context.Context) error, error) {
	return nil, cerrors.NotImplemented(PlatformName, "NetworkSplit")
}
