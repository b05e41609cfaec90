package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
)

// GetInstanceByPrivateIP returns the instance owning the private ip address
func GetInstanceByPrivateIP(ctx context.Context, ec2Svc ec2iface.EC2API, ip string) (*ec2.Instance, error) {
	result, err := ec2Svc.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{Name: aws.String("private-ip-address"), Values: []*string{aws.String(ip)}},
		},
	})
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not describe instance with private ip %s", ip)
	}
	for _, reservation := range result.Reservations {
		for _, instance := range reservation.Instances {
			if instance.State != nil && aws.StringValue(instance.State.Name) == ec2.InstanceStateNameTerminated {
				continue
			}
			return instance, nil
		}
	}
	return nil, cerrors.Error{
		ErrorCode: cerrors.ErrorTypeTargetSelection,
		Reason:    "no ec2 instance found with the node address",
		Target:    fmt.Sprintf("{privateIP: %s}", ip),
	}
}

// GetEC2InstanceStatus returns the state name of the instance
func GetEC2InstanceStatus(ctx context.Context, ec2Svc ec2iface.EC2API, instanceID string) (string, error) {
	result, err := ec2Svc.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(instanceID)},
	})
	if err != nil {
		return "", err
	}
	for _, reservation := range result.Reservations {
		for _, instance := range reservation.Instances {
			if aws.StringValue(instance.InstanceId) == instanceID && instance.State != nil {
				return aws.StringValue(instance.State.Name), nil
			}
		}
	}
	return "", fmt.Errorf("failed to get the status of ec2 instance with instanceID %v", instanceID)
}

func securityGroupIDs(instance *ec2.Instance) []*string {
	var ids []*string
	for _, group := range instance.SecurityGroups {
		ids = append(ids, group.GroupId)
	}
	return ids
}
