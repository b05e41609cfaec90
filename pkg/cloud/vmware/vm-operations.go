package vmware

import (
	"context"

	"github.com/palantir/stacktrace"
	"github.com/pkg/errors"
	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// virtualMachine is the subset of VM operations used by the platform
type virtualMachine interface {
	Name() string
	PowerState(ctx context.Context) (vimtypes.VirtualMachinePowerState, error)
	PowerOff(ctx context.Context) error
	PowerOn(ctx context.Context) error
	SetNetworkConnected(ctx context.Context, connected bool) error
}

type govmomiVM struct {
	vm *object.VirtualMachine
}

func (g *govmomiVM) Name() string {
	return g.vm.Reference().Value
}

func (g *govmomiVM) PowerState(ctx context.Context) (vimtypes.VirtualMachinePowerState, error) {
	return g.vm.PowerState(ctx)
}

// PowerOff stops a given powered-on VM and waits for the POWERED_OFF state
func (g *govmomiVM) PowerOff(ctx context.Context) error {
	task, err := g.vm.PowerOff(ctx)
	if err != nil {
		return stacktrace.Propagate(err, "failed to stop vm")
	}
	if err := task.Wait(ctx); err != nil {
		return stacktrace.Propagate(err, "failed to stop vm")
	}
	return g.vm.WaitForPowerState(ctx, vimtypes.VirtualMachinePowerStatePoweredOff)
}

// PowerOn starts a given powered-off VM and waits for the POWERED_ON state
func (g *govmomiVM) PowerOn(ctx context.Context) error {
	task, err := g.vm.PowerOn(ctx)
	if err != nil {
		return stacktrace.Propagate(err, "failed to start vm")
	}
	if err := task.Wait(ctx); err != nil {
		return stacktrace.Propagate(err, "failed to start vm")
	}
	return g.vm.WaitForPowerState(ctx, vimtypes.VirtualMachinePowerStatePoweredOn)
}

// SetNetworkConnected flips the connected flag of every virtual ethernet card of the VM
func (g *govmomiVM) SetNetworkConnected(ctx context.Context, connected bool) error {
	devices, err := g.vm.Device(ctx)
	if err != nil {
		return stacktrace.Propagate(err, "failed to list devices")
	}
	cards := devices.SelectByType((*vimtypes.VirtualEthernetCard)(nil))
	if len(cards) == 0 {
		return errors.Errorf("vm %s has no network adapter", g.Name())
	}
	for _, card := range cards {
		if connected {
			err = devices.Connect(card)
		} else {
			err = devices.Disconnect(card)
		}
		if err != nil {
			return stacktrace.Propagate(err, "failed to update network adapter %s", devices.Name(card))
		}
	}
	return g.vm.EditDevice(ctx, cards...)
}
