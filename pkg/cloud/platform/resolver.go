package platform

import (
	"context"

	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
)

// NodeResolver maps node roles onto node addresses
type NodeResolver interface {
	NodeAddresses(ctx context.Context, role types.NodeRole) ([]string, error)
	RandomNodeAddress(ctx context.Context, role types.NodeRole) (string, error)
}

// KubeNodeResolver resolves node addresses from the role labels of the cluster nodes
type KubeNodeResolver struct {
	Clients clients.ClientSets
}

func (r KubeNodeResolver) NodeAddresses(ctx context.Context, role types.NodeRole) ([]string, error) {
	return common.GetNodeAddresses(ctx, role, r.Clients)
}

func (r KubeNodeResolver) RandomNodeAddress(ctx context.Context, role types.NodeRole) (string, error) {
	return common.GetRandomNodeAddress(ctx, role, r.Clients)
}
