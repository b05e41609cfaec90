package providers

import (
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/aws"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/baremetal"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/gcp"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/ibmcloud"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/vmware"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// Registry returns the factories of every supported platform
func Registry() platform.Registry {
	return platform.Registry{
		vmware.PlatformName:    vmware.New,
		aws.PlatformName:       aws.New,
		ibmcloud.PlatformName:  ibmcloud.New,
		baremetal.PlatformName: baremetal.New,
		gcp.PlatformName:       gcp.New,
	}
}

// GetClusterPlatform builds the platform named in the details
func GetClusterPlatform(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	p, err := Registry().New(details.Platform, details, resolver)
	if err != nil {
		return nil, err
	}
	log.Infof("[Info]: Using cluster platform %v", p.Name())
	return p, nil
}
