package status

import (
	"context"
	"fmt"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// CephHealthOK is the health reported by a healthy Ceph cluster
const CephHealthOK = "HEALTH_OK"

// CheckCephHealth checks that every CephCluster of the namespace reports HEALTH_OK
func CheckCephHealth(ctx context.Context, clients clients.ClientSets, namespace string) error {
	clusters, err := clients.ListCephClusters(ctx, namespace)
	if err != nil {
		return listFailed(err, cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Target: fmt.Sprintf("{namespace: %s}", namespace), Reason: fmt.Sprintf("failed to list CephClusters: %s", err.Error())})
	}
	if len(clusters.Items) == 0 {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Target: fmt.Sprintf("{namespace: %s}", namespace), Reason: "no CephCluster found"}
	}
	for _, cluster := range clusters.Items {
		health, _, err := unstructured.NestedString(cluster.Object, "status", "ceph", "health")
		if err != nil {
			return cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Target: fmt.Sprintf("{cephCluster: %s}", cluster.GetName()), Reason: err.Error()}
		}
		if health != CephHealthOK {
			return cerrors.Error{ErrorCode: cerrors.ErrorTypeStatusChecks, Target: fmt.Sprintf("{cephCluster: %s}", cluster.GetName()), Reason: fmt.Sprintf("ceph health is %q", health)}
		}
		log.InfoWithValues("The CephCluster status is as follows", log.Fields{
			"CephCluster": cluster.GetName(), "Health": health})
	}
	return nil
}
