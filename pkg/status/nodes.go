package status

import (
	"context"
	"fmt"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CheckNodeStatus checks that every node of the cluster is Ready
func CheckNodeStatus(ctx context.Context, clients clients.ClientSets) error {
	nodeList, err := clients.KubeClient.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return listFailed(err, cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Reason: fmt.Sprintf("failed to list all nodes: %s", err.Error())})
	}
	for _, node := range nodeList.Items {
		if !isNodeReady(node) {
			return cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Target: fmt.Sprintf("{nodeName: %s}", node.Name), Reason: "node is not in ready state"}
		}
	}
	log.Infof("[Status]: All %v nodes are Ready", len(nodeList.Items))
	return nil
}

func isNodeReady(node apiv1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == apiv1.NodeReady && condition.Status == apiv1.ConditionTrue {
			return true
		}
	}
	return false
}
