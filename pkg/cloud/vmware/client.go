package vmware

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
)

// vmFinder resolves a node address onto its virtual machine
type vmFinder interface {
	FindVMByIP(ctx context.Context, ip string) (virtualMachine, error)
}

// govmomiFinder logs in to vCenter on first use and searches VMs by guest IP
type govmomiFinder struct {
	details types.VsphereDetails

	mu         sync.Mutex
	client     *govmomi.Client
	datacenter *object.Datacenter
}

func (f *govmomiFinder) login(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return nil
	}

	u, err := url.Parse(fmt.Sprintf("https://%s/sdk", f.details.Server))
	if err != nil {
		return stacktrace.Propagate(err, "invalid vCenter server %q", f.details.Server)
	}
	u.User = url.UserPassword(f.details.User, f.details.Password)

	log.Infof("[Auth]: Logging in to vCenter %v", f.details.Server)
	client, err := govmomi.NewClient(ctx, u, true)
	if err != nil {
		return cerrors.Error{
			ErrorCode: cerrors.ErrorTypeGeneric,
			Reason:    fmt.Sprintf("vCenter login failed: %v", err),
			Target:    fmt.Sprintf("{vcenter: %s}", f.details.Server),
		}
	}
	datacenter, err := find.NewFinder(client.Client).DatacenterOrDefault(ctx, f.details.Datacenter)
	if err != nil {
		return stacktrace.Propagate(err, "could not find datacenter %q", f.details.Datacenter)
	}
	f.client = client
	f.datacenter = datacenter
	return nil
}

func (f *govmomiFinder) FindVMByIP(ctx context.Context, ip string) (virtualMachine, error) {
	if err := f.login(ctx); err != nil {
		return nil, err
	}
	ref, err := object.NewSearchIndex(f.client.Client).FindByIp(ctx, f.datacenter, ip, true)
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not search VM by ip %s", ip)
	}
	vm, ok := ref.(*object.VirtualMachine)
	if !ok || vm == nil {
		return nil, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeTargetSelection,
			Reason:    "no virtual machine found with the node address",
			Target:    fmt.Sprintf("{ip: %s}", ip),
		}
	}
	return &govmomiVM{vm: vm}, nil
}
