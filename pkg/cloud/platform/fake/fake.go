// Package fake provides a recording ClusterPlatform for tests
package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// Call is one recorded platform operation
type Call struct {
	Op      string
	Address string
	Role    types.NodeRole
	On      bool
	Nodes   []string
}

func (c Call) String() string {
	switch c.Op {
	case "SetNodePower":
		return fmt.Sprintf("%s(%s, %v)", c.Op, c.Address, c.On)
	case "SetNodeNetworkInterface":
		return fmt.Sprintf("%s(%s, %s, %v)", c.Op, c.Address, c.Role, c.On)
	case "NetworkSplit", "RestoreNetworkSplit":
		return fmt.Sprintf("%s(%s)", c.Op, strings.Join(c.Nodes, ","))
	default:
		return fmt.Sprintf("%s(%s)", c.Op, c.Address)
	}
}

// Platform records every call and serves addresses from Nodes
type Platform struct {
	mu sync.Mutex

	PlatformName string
	Nodes        map[types.NodeRole][]string
	Calls        []Call

	// Errors makes the named operation fail
	Errors map[string]error
	// OnCall runs after a call is recorded, before it returns
	OnCall func(Call)
}

// NewPlatform returns a fake with two masters and three workers
func NewPlatform() *Platform {
	return &Platform{
		PlatformName: "fake",
		Nodes: map[types.NodeRole][]string{
			types.MasterRole: {"10.0.0.1", "10.0.0.2"},
			types.WorkerRole: {"10.0.1.1", "10.0.1.2", "10.0.1.3"},
		},
		Errors: map[string]error{},
	}
}

func (p *Platform) record(call Call) error {
	p.mu.Lock()
	p.Calls = append(p.Calls, call)
	err := p.Errors[call.Op]
	hook := p.OnCall
	p.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return err
}

// Recorded returns a copy of the calls matching op, or all calls when op is empty
func (p *Platform) Recorded(op string) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var calls []Call
	for _, call := range p.Calls {
		if op == "" || call.Op == op {
			calls = append(calls, call)
		}
	}
	return calls
}

func (p *Platform) Name() string {
	return p.PlatformName
}

func (p *Platform) NodeAddresses(_ context.Context, role types.NodeRole) ([]string, error) {
	if err := p.record(Call{Op: "NodeAddresses", Role: role}); err != nil {
		return nil, err
	}
	nodes := p.Nodes[role]
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no %s nodes", role)
	}
	return append([]string(nil), nodes...), nil
}

func (p *Platform) RandomNodeAddress(_ context.Context, role types.NodeRole) (string, error) {
	if err := p.record(Call{Op: "RandomNodeAddress", Role: role}); err != nil {
		return "", err
	}
	nodes := p.Nodes[role]
	if len(nodes) == 0 {
		return "", fmt.Errorf("no %s nodes", role)
	}
	return nodes[0], nil
}

func (p *Platform) SetNodePower(_ context.Context, address string, on bool) error {
	return p.record(Call{Op: "SetNodePower", Address: address, On: on})
}

func (p *Platform) RebootNode(_ context.Context, address string) error {
	return p.record(Call{Op: "RebootNode", Address: address})
}

func (p *Platform) SetNodeNetworkInterface(_ context.Context, address string, role types.NodeRole, connected bool) error {
	return p.record(Call{Op: "SetNodeNetworkInterface", Address: address, Role: role, On: connected})
}

func (p *Platform) NetworkSplit(_ context.Context, nodes []string) (func(context.Context) error, error) {
	if err := p.record(Call{Op: "NetworkSplit", Nodes: nodes}); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		return p.record(Call{Op: "RestoreNetworkSplit", Nodes: nodes})
	}, nil
}

// MutatingCalls returns the calls which change infrastructure state
func (p *Platform) MutatingCalls() []Call {
	var calls []Call
	for _, call := range p.Recorded("") {
		switch call.Op {
		case "SetNodePower", "RebootNode", "SetNodeNetworkInterface", "NetworkSplit", "RestoreNetworkSplit":
			calls = append(calls, call)
		}
	}
	return calls
}
