package ibmcloud

import (
	"context"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/IBM/vpc-go-sdk/vpcv1"
	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// vpcAPI is the subset of the VPC service used by the platform
type vpcAPI interface {
	ListInstancesWithContext(ctx context.Context, options *vpcv1.ListInstancesOptions) (*vpcv1.InstanceCollection, *core.DetailedResponse, error)
	GetInstanceWithContext(ctx context.Context, options *vpcv1.GetInstanceOptions) (*vpcv1.Instance, *core.DetailedResponse, error)
	CreateInstanceActionWithContext(ctx context.Context, options *vpcv1.CreateInstanceActionOptions) (*vpcv1.InstanceAction, *core.DetailedResponse, error)
}

// NewVPCService creates a VPC service client authenticated with the IAM api key
func NewVPCService(details types.IBMCloudDetails) (*vpcv1.VpcV1, error) {
	vpcService, err := vpcv1.NewVpcV1(&vpcv1.VpcV1Options{
		URL:           details.VPCURL,
		Authenticator: &core.IamAuthenticator{ApiKey: details.APIKey},
	})
	if err != nil {
		return nil, stacktrace.Propagate(err, "error creating VPC service client")
	}
	return vpcService, nil
}
