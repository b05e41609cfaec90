package platform

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// ClusterPlatform performs infrastructure operations on the nodes of the cluster
// for one kind of hosting environment
type ClusterPlatform interface {
	// Name returns the registry key of the platform
	Name() string
	// RandomNodeAddress returns the address of a node of the role chosen uniformly at random
	RandomNodeAddress(ctx context.Context, role types.NodeRole) (string, error)
	// NodeAddresses returns the addresses of all nodes of the role
	NodeAddresses(ctx context.Context, role types.NodeRole) ([]string, error)
	// SetNodePower powers the node on or off, it is a no-op when the node already is in that state
	SetNodePower(ctx context.Context, address string, on bool) error
	// RebootNode powers the node off and on again
	RebootNode(ctx context.Context, address string) error
	// SetNodeNetworkInterface connects or disconnects the network interfaces of the node
	SetNodeNetworkInterface(ctx context.Context, address string, role types.NodeRole, connected bool) error
	// NetworkSplit isolates the nodes from the rest of the cluster and returns the func which restores them
	NetworkSplit(ctx context.Context, nodes []string) (restore func(context.Context) error, err error)
}

// Factory builds a platform from the run details and the node resolver
type Factory func(details types.PlatformDetails, resolver NodeResolver) (ClusterPlatform, error)

// Registry maps the lower-cased platform name onto its factory
type Registry map[string]Factory

// New builds the platform registered under name
func (r Registry) New(name string, details types.PlatformDetails, resolver NodeResolver) (ClusterPlatform, error) {
	factory, ok := r[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeUnsupportedPlatform,
			Reason:    fmt.Sprintf("platform '%s' is not supported, known platforms: %v", name, r.Names()),
			Target:    fmt.Sprintf("{platform: %s}", name),
		}
	}
	return factory(details, resolver)
}

// Names returns the registered platform names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SettleInterval converts the configured reboot settle interval, falling back to 20s
func SettleInterval(details types.PlatformDetails) time.Duration {
	if details.RebootSettleInterval <= 0 {
		return 20 * time.Second
	}
	return time.Duration(details.RebootSettleInterval) * time.Second
}
