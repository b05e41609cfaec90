package clients

import (
	"context"
	"time"

	core_v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/retry"
)

var (
	defaultTimeout = 60
	defaultDelay   = 2
)

// CephClusterResource is the rook CephCluster custom resource
var CephClusterResource = schema.GroupVersionResource{Group: "ceph.rook.io", Version: "v1", Resource: "cephclusters"}

// ListNode lists the nodes matching the label selector, retrying transient API errors
func (clients *ClientSets) ListNode(ctx context.Context, labels string) (*core_v1.NodeList, error) {
	var (
		nodes *core_v1.NodeList
		err   error
	)

	if err := retry.
		Times(uint(defaultTimeout / defaultDelay)).
		Wait(time.Duration(defaultDelay) * time.Second).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			nodes, err = clients.KubeClient.CoreV1().Nodes().List(ctx, v1.ListOptions{
				LabelSelector: labels,
			})
			return err
		}); err != nil {
		return nil, err
	}

	return nodes, nil
}

// ListCephClusters lists the CephCluster resources of the namespace
func (clients *ClientSets) ListCephClusters(ctx context.Context, namespace string) (*unstructured.UnstructuredList, error) {
	return clients.DynamicClient.Resource(CephClusterResource).Namespace(namespace).List(ctx, v1.ListOptions{})
}
