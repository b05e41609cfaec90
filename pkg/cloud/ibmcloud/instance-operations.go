package ibmcloud

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/IBM/vpc-go-sdk/vpcv1"
	"github.com/pkg/errors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/retry"
)

const (
	instanceStatusRunning = "running"
	instanceStatusStopped = "stopped"
)

// GetInstanceByIP returns the VPC instance with a network interface holding the ip
func GetInstanceByIP(ctx context.Context, vpcService vpcAPI, ip string) (*vpcv1.Instance, error) {
	instances, _, err := vpcService.ListInstancesWithContext(ctx, &vpcv1.ListInstancesOptions{Limit: core.Int64Ptr(100)})
	if err != nil {
		return nil, errors.Errorf("error listing instances: %v", err)
	}
	for i := range instances.Instances {
		instance := &instances.Instances[i]
		for _, nic := range instance.NetworkInterfaces {
			if nic.PrimaryIP != nil && nic.PrimaryIP.Address != nil && *nic.PrimaryIP.Address == ip {
				return instance, nil
			}
		}
	}
	return nil, cerrors.Error{
		ErrorCode: cerrors.ErrorTypeTargetSelection,
		Reason:    "no vpc instance found with the node address",
		Target:    fmt.Sprintf("{ip: %s}", ip),
	}
}

// GetIBMInstanceStatus returns the status of the instance
func GetIBMInstanceStatus(ctx context.Context, vpcService vpcAPI, instanceID string) (string, error) {
	instance, _, err := vpcService.GetInstanceWithContext(ctx, &vpcv1.GetInstanceOptions{ID: core.StringPtr(instanceID)})
	if err != nil {
		return "", err
	}
	return *instance.Status, nil
}

// InstanceAction runs the start or stop action on the instance
func InstanceAction(ctx context.Context, vpcService vpcAPI, instanceID, action string) error {
	_, _, err := vpcService.CreateInstanceActionWithContext(ctx, &vpcv1.CreateInstanceActionOptions{
		InstanceID: core.StringPtr(instanceID),
		Type:       core.StringPtr(action),
	})
	if err != nil {
		return errors.Errorf("unable to %s IBM instance: %v", action, err)
	}
	return nil
}

// WaitForInstanceStatus polls the instance until it reports the status
func WaitForInstanceStatus(ctx context.Context, vpcService vpcAPI, instanceID, status string, timeout, delay time.Duration) error {
	log.Infof("[Status]: Waiting for instance %v to be %v", instanceID, status)
	return retry.
		Times(uint(timeout / delay)).
		Wait(delay).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			current, err := GetIBMInstanceStatus(ctx, vpcService, instanceID)
			if err != nil {
				return errors.Errorf("failed to get %s instance status: %v", instanceID, err)
			}
			if current != status {
				log.Infof("%s instance state is %s", instanceID, current)
				return errors.Errorf("%s instance is not yet %s", instanceID, status)
			}
			return nil
		})
}
