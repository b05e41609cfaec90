package common

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	apiv1 "k8s.io/api/core/v1"
)

// RoleLabel returns the node label selector of the given role
func RoleLabel(role types.NodeRole) string {
	return fmt.Sprintf("node-role.kubernetes.io/%s", role)
}

// GetNodeAddresses returns the internal IP addresses of all nodes carrying the role
func GetNodeAddresses(ctx context.Context, role types.NodeRole, clients clients.ClientSets) ([]string, error) {
	nodeLabel := RoleLabel(role)
	nodeList, err := clients.ListNode(ctx, nodeLabel)
	if err != nil {
		return nil, cerrors.Error{ErrorCode: cerrors.ErrorTypeTargetSelection, Target: fmt.Sprintf("{nodeLabel: %s}", nodeLabel), Reason: err.Error()}
	}

	var addresses []string
	for _, node := range nodeList.Items {
		if address := internalIP(node); address != "" {
			addresses = append(addresses, address)
		}
	}
	if len(addresses) == 0 {
		return nil, cerrors.Error{ErrorCode: cerrors.ErrorTypeTargetSelection, Target: fmt.Sprintf("{nodeLabel: %s}", nodeLabel), Reason: "no node found with matching labels"}
	}
	return addresses, nil
}

// GetRandomNodeAddress selects one node of the role uniformly at random and returns its address
func GetRandomNodeAddress(ctx context.Context, role types.NodeRole, clients clients.ClientSets) (string, error) {
	addresses, err := GetNodeAddresses(ctx, role, clients)
	if err != nil {
		return "", stacktrace.Propagate(err, "could not get %s node addresses", role)
	}
	address := PickRandom(addresses)
	log.Infof("[Target]: Selected %v node: %v", role, address)
	return address, nil
}

// PickRandom returns a uniformly random element of a non-empty list
func PickRandom(items []string) string {
	return items[rand.IntN(len(items))]
}

// PickRandomN returns n distinct random elements, or all of them when n exceeds the list length
func PickRandomN(items []string, n int) []string {
	shuffled := append([]string(nil), items...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func internalIP(node apiv1.Node) string {
	for _, address := range node.Status.Addresses {
		if address.Type == apiv1.NodeInternalIP {
			return address.Address
		}
	}
	return ""
}
