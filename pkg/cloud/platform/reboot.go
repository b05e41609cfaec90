package platform

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
)

// PowerSwitch is the power control of a single variant
type PowerSwitch interface {
	SetNodePower(ctx context.Context, address string, on bool) error
}

// WaitFunc blocks for the duration or until the context is done
type WaitFunc func(ctx context.Context, d time.Duration) error

// Reboot powers the node off, waits for it to settle and powers it on again.
// Power on is attempted on every exit path, including cancellation, on a context detached from ctx.
func Reboot(ctx context.Context, power PowerSwitch, address string, settle time.Duration, wait WaitFunc) (err error) {
	defer func() {
		if powerOnErr := power.SetNodePower(context.WithoutCancel(ctx), address, true); powerOnErr != nil {
			err = multierror.Append(err, stacktrace.Propagate(powerOnErr, "could not power on node %s", address))
		}
	}()

	log.Infof("[Chaos]: Powering off node %v", address)
	if err := power.SetNodePower(ctx, address, false); err != nil {
		return stacktrace.Propagate(err, "could not power off node %s", address)
	}

	log.Infof("[Wait]: Waiting %v for node %v to settle", settle, address)
	if err := wait(ctx, settle); err != nil {
		return stacktrace.Propagate(err, "interrupted while waiting for node %s to settle", address)
	}
	log.Infof("[Chaos]: Powering on node %v", address)
	return nil
}
