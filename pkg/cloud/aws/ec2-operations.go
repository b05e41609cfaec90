package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/pkg/errors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/retry"
)

// EC2Stop will stop an aws ec2 instance
func EC2Stop(ctx context.Context, ec2Svc ec2iface.EC2API, instanceID string) error {
	result, err := ec2Svc.StopInstancesWithContext(ctx, &ec2.StopInstancesInput{
		InstanceIds: []*string{aws.String(instanceID)},
	})
	if err != nil {
		return awsError(err)
	}
	if len(result.StoppingInstances) > 0 {
		log.InfoWithValues("Stopping ec2 instance:", log.Fields{
			"CurrentState":  aws.StringValue(result.StoppingInstances[0].CurrentState.Name),
			"PreviousState": aws.StringValue(result.StoppingInstances[0].PreviousState.Name),
			"InstanceId":    aws.StringValue(result.StoppingInstances[0].InstanceId),
		})
	}
	return nil
}

// EC2Start will start an aws ec2 instance
func EC2Start(ctx context.Context, ec2Svc ec2iface.EC2API, instanceID string) error {
	result, err := ec2Svc.StartInstancesWithContext(ctx, &ec2.StartInstancesInput{
		InstanceIds: []*string{aws.String(instanceID)},
	})
	if err != nil {
		return awsError(err)
	}
	if len(result.StartingInstances) > 0 {
		log.InfoWithValues("Starting ec2 instance:", log.Fields{
			"CurrentState":  aws.StringValue(result.StartingInstances[0].CurrentState.Name),
			"PreviousState": aws.StringValue(result.StartingInstances[0].PreviousState.Name),
			"InstanceId":    aws.StringValue(result.StartingInstances[0].InstanceId),
		})
	}
	return nil
}

// WaitForEC2State will wait for the ec2 instance to reach the given state
func WaitForEC2State(ctx context.Context, ec2Svc ec2iface.EC2API, instanceID, state string, timeout, delay time.Duration) error {
	log.Infof("[Status]: Waiting for EC2 instance %v to be %v", instanceID, state)
	return retry.
		Times(uint(timeout / delay)).
		Wait(delay).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			instanceState, err := GetEC2InstanceStatus(ctx, ec2Svc, instanceID)
			if err != nil {
				return errors.Errorf("failed to get the instance status, err: %v", err)
			}
			if instanceState != state {
				log.Infof("The instance state is %v", instanceState)
				return errors.Errorf("instance is not yet in %s state", state)
			}
			log.Infof("The instance state is %v", instanceState)
			return nil
		})
}

func awsError(err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		return errors.Errorf("%s: %s", aerr.Code(), aerr.Message())
	}
	return errors.Errorf("%v", err)
}
