package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/hashicorp/go-multierror"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/common"
)

// PlatformName is the registry key of the AWS platform
const PlatformName = "aws"

// Platform drives cluster nodes running as EC2 instances
type Platform struct {
	platform.NodeResolver
	ec2Svc ec2iface.EC2API
	settle time.Duration
	wait   platform.WaitFunc

	stateTimeout time.Duration
	stateDelay   time.Duration

	mu sync.Mutex
	// original security groups of disconnected instances, by instance id
	isolated map[string][]*string
}

// New is the platform.Factory of the AWS platform
func New(details types.PlatformDetails, resolver platform.NodeResolver) (platform.ClusterPlatform, error) {
	ec2Svc, err := GetNewEC2Client(details.AWS.Region)
	if err != nil {
		return nil, err
	}
	return newPlatform(ec2Svc, resolver, platform.SettleInterval(details)), nil
}

func newPlatform(ec2Svc ec2iface.EC2API, resolver platform.NodeResolver, settle time.Duration) *Platform {
	return &Platform{
		NodeResolver: resolver,
		ec2Svc:       ec2Svc,
		settle:       settle,
		wait:         common.WaitForDuration,
		stateTimeout: 10 * time.Minute,
		stateDelay:   10 * time.Second,
		isolated:     map[string][]*string{},
	}
}

func (p *Platform) Name() string {
	return PlatformName
}

// SetNodePower starts or stops the instance of the node and waits for the final state
func (p *Platform) SetNodePower(ctx context.Context, address string, on bool) error {
	instance, err := GetInstanceByPrivateIP(ctx, p.ec2Svc, address)
	if err != nil {
		return err
	}
	instanceID := aws.StringValue(instance.InstanceId)
	state := aws.StringValue(instance.State.Name)

	want := ec2.InstanceStateNameStopped
	if on {
		want = ec2.InstanceStateNameRunning
	}
	if state == want {
		log.Infof("[Info]: Instance %v of node %v is already %v", instanceID, address, state)
		return nil
	}

	if on {
		err = EC2Start(ctx, p.ec2Svc, instanceID)
	} else {
		err = EC2Stop(ctx, p.ec2Svc, instanceID)
	}
	if err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{ec2InstanceID: %s}", instanceID), Reason: err.Error()}
	}
	return WaitForEC2State(ctx, p.ec2Svc, instanceID, want, p.stateTimeout, p.stateDelay)
}

func (p *Platform) RebootNode(ctx context.Context, address string) error {
	return platform.Reboot(ctx, p, address, p.settle, p.wait)
}

// SetNodeNetworkInterface swaps the security groups of the instance for an isolation group
// and puts the remembered groups back on reconnect.
// Security groups are stateful: connections EC2 already tracks, such as an established
// kubelet watch on the API server, keep flowing until they close, only new ones are refused.
func (p *Platform) SetNodeNetworkInterface(ctx context.Context, address string, role types.NodeRole, connected bool) error {
	instance, err := GetInstanceByPrivateIP(ctx, p.ec2Svc, address)
	if err != nil {
		return err
	}
	instanceID := aws.StringValue(instance.InstanceId)

	p.mu.Lock()
	defer p.mu.Unlock()

	if connected {
		original, ok := p.isolated[instanceID]
		if !ok {
			log.Infof("[Info]: Instance %v of %v node %v is not isolated", instanceID, role, address)
			return nil
		}
		log.Infof("[Revert]: Restoring security groups of instance %v", instanceID)
		if err := AssignSecurityGroupsToInstance(ctx, p.ec2Svc, instanceID, original); err != nil {
			return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosRevert, Target: fmt.Sprintf("{ec2InstanceID: %s}", instanceID), Reason: err.Error()}
		}
		delete(p.isolated, instanceID)
		return nil
	}

	if _, ok := p.isolated[instanceID]; ok {
		log.Infof("[Info]: Instance %v of %v node %v is already isolated", instanceID, role, address)
		return nil
	}
	vpcID := aws.StringValue(instance.VpcId)
	groupName := isolationGroupPrefix + vpcID
	groupID, err := GetSecurityGroupByName(ctx, p.ec2Svc, vpcID, groupName)
	if err != nil {
		return err
	}
	if groupID == "" {
		if groupID, err = CreateIsolatedSecurityGroup(ctx, p.ec2Svc, vpcID, groupName, false); err != nil {
			return err
		}
	}

	log.InfoWithValues("[Chaos]: Isolating instance", log.Fields{
		"InstanceId":    instanceID,
		"Role":          role,
		"SecurityGroup": groupID,
	})
	if err := AssignSecurityGroupsToInstance(ctx, p.ec2Svc, instanceID, []*string{aws.String(groupID)}); err != nil {
		return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{ec2InstanceID: %s}", instanceID), Reason: err.Error()}
	}
	p.isolated[instanceID] = securityGroupIDs(instance)
	return nil
}

// NetworkSplit moves the instances into a group which only allows traffic between its members.
// As with SetNodeNetworkInterface, already tracked connections survive the split.
func (p *Platform) NetworkSplit(ctx context.Context, nodes []string) (func(context.Context) error, error) {
	if len(nodes) == 0 {
		return nil, cerrors.Error{ErrorCode: cerrors.ErrorTypeTargetSelection, Reason: "no nodes to split"}
	}
	var instances []*ec2.Instance
	for _, address := range nodes {
		instance, err := GetInstanceByPrivateIP(ctx, p.ec2Svc, address)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}

	groupID, err := CreateIsolatedSecurityGroup(ctx, p.ec2Svc, aws.StringValue(instances[0].VpcId), splitGroupPrefix+common.GetRunID(), true)
	if groupID == "" && err != nil {
		return nil, err
	}

	var moved []*ec2.Instance
	restore := func(ctx context.Context) error {
		var result error
		for _, instance := range moved {
			instanceID := aws.StringValue(instance.InstanceId)
			log.Infof("[Revert]: Restoring security groups of instance %v", instanceID)
			if err := AssignSecurityGroupsToInstance(ctx, p.ec2Svc, instanceID, securityGroupIDs(instance)); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if result != nil {
			return cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosRevert, Target: fmt.Sprintf("{securityGroup: %s}", groupID), Reason: result.Error()}
		}
		return DeleteSecurityGroup(ctx, p.ec2Svc, groupID)
	}
	if err != nil {
		return nil, multierror.Append(err, restore(context.WithoutCancel(ctx)))
	}

	for _, instance := range instances {
		instanceID := aws.StringValue(instance.InstanceId)
		log.InfoWithValues("[Chaos]: Splitting instance", log.Fields{"InstanceId": instanceID, "SecurityGroup": groupID})
		if err := AssignSecurityGroupsToInstance(ctx, p.ec2Svc, instanceID, []*string{aws.String(groupID)}); err != nil {
			injectErr := cerrors.Error{ErrorCode: cerrors.ErrorTypeChaosInject, Target: fmt.Sprintf("{ec2InstanceID: %s}", instanceID), Reason: err.Error()}
			if restoreErr := restore(context.WithoutCancel(ctx)); restoreErr != nil {
				return nil, multierror.Append(injectErr, restoreErr)
			}
			return nil, injectErr
		}
		moved = append(moved, instance)
	}
	return restore, nil
}

var _ platform.ClusterPlatform = (*Platform)(nil)
