package gcp

import (
	"context"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"
)

// instancesAPI is the subset of the compute instances service used by the platform
type instancesAPI interface {
	List(ctx context.Context, project, zone string) ([]*compute.Instance, error)
	Get(ctx context.Context, project, zone, name string) (*compute.Instance, error)
	Stop(ctx context.Context, project, zone, name string) error
	Start(ctx context.Context, project, zone, name string) error
}

type computeInstances struct {
	service *compute.Service
}

// NewComputeService creates a compute service from the credentials file, or the default credentials when unset
func NewComputeService(ctx context.Context, details types.GCPDetails) (*compute.Service, error) {
	var opts []option.ClientOption
	if details.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(details.CredentialsFile))
	}
	computeService, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not create GCP compute service")
	}
	return computeService, nil
}

func (c computeInstances) List(ctx context.Context, project, zone string) ([]*compute.Instance, error) {
	var instances []*compute.Instance
	err := c.service.Instances.List(project, zone).Pages(ctx, func(page *compute.InstanceList) error {
		instances = append(instances, page.Items...)
		return nil
	})
	return instances, err
}

func (c computeInstances) Get(ctx context.Context, project, zone, name string) (*compute.Instance, error) {
	return c.service.Instances.Get(project, zone, name).Context(ctx).Do()
}

// Stop stops a VM Instance
func (c computeInstances) Stop(ctx context.Context, project, zone, name string) error {
	_, err := c.service.Instances.Stop(project, zone, name).Context(ctx).Do()
	return err
}

// Start starts a VM instance
func (c computeInstances) Start(ctx context.Context, project, zone, name string) error {
	_, err := c.service.Instances.Start(project, zone, name).Context(ctx).Do()
	return err
}
