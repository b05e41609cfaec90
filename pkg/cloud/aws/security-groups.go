package aws

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/palantir/stacktrace"
)

const (
	isolationGroupPrefix = "resiliency-isolation-"
	splitGroupPrefix     = "resiliency-split-"
)

// GetSecurityGroupByName returns the id of the named group of the vpc, or an empty string
func GetSecurityGroupByName(ctx context.Context, ec2Svc ec2iface.EC2API, vpcID, name string) (string, error) {
	result, err := ec2Svc.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []*ec2.Filter{
			{Name: aws.String("vpc-id"), Values: []*string{aws.String(vpcID)}},
			{Name: aws.String("group-name"), Values: []*string{aws.String(name)}},
		},
	})
	if err != nil {
		return "", stacktrace.Propagate(err, "could not describe security group %s", name)
	}
	if len(result.SecurityGroups) == 0 {
		return "", nil
	}
	return aws.StringValue(result.SecurityGroups[0].GroupId), nil
}

// CreateIsolatedSecurityGroup creates a group without ingress rules and with its default egress rule revoked.
// When selfReferencing is set, members of the group may still reach each other.
func CreateIsolatedSecurityGroup(ctx context.Context, ec2Svc ec2iface.EC2API, vpcID, name string, selfReferencing bool) (string, error) {
	created, err := ec2Svc.CreateSecurityGroupWithContext(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String("resiliency network isolation"),
		VpcId:       aws.String(vpcID),
	})
	if err != nil {
		return "", stacktrace.Propagate(awsError(err), "could not create security group %s", name)
	}
	groupID := aws.StringValue(created.GroupId)

	if _, err := ec2Svc.RevokeSecurityGroupEgressWithContext(ctx, &ec2.RevokeSecurityGroupEgressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []*ec2.IpPermission{{
			IpProtocol: aws.String("-1"),
			IpRanges:   []*ec2.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
		}},
	}); err != nil {
		return groupID, stacktrace.Propagate(awsError(err), "could not revoke default egress of %s", groupID)
	}
	if !selfReferencing {
		return groupID, nil
	}

	self := []*ec2.IpPermission{{
		IpProtocol:       aws.String("-1"),
		UserIdGroupPairs: []*ec2.UserIdGroupPair{{GroupId: aws.String(groupID)}},
	}}
	if _, err := ec2Svc.AuthorizeSecurityGroupIngressWithContext(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: self,
	}); err != nil {
		return groupID, stacktrace.Propagate(awsError(err), "could not authorize ingress of %s", groupID)
	}
	if _, err := ec2Svc.AuthorizeSecurityGroupEgressWithContext(ctx, &ec2.AuthorizeSecurityGroupEgressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: self,
	}); err != nil {
		return groupID, stacktrace.Propagate(awsError(err), "could not authorize egress of %s", groupID)
	}
	return groupID, nil
}

// DeleteSecurityGroup removes the group
func DeleteSecurityGroup(ctx context.Context, ec2Svc ec2iface.EC2API, groupID string) error {
	_, err := ec2Svc.DeleteSecurityGroupWithContext(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(groupID)})
	if err != nil {
		return stacktrace.Propagate(awsError(err), "could not delete security group %s", groupID)
	}
	return nil
}

// AssignSecurityGroupsToInstance replaces the security groups of the instance
func AssignSecurityGroupsToInstance(ctx context.Context, ec2Svc ec2iface.EC2API, instanceID string, groupIDs []*string) error {
	_, err := ec2Svc.ModifyInstanceAttributeWithContext(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Groups:     groupIDs,
	})
	if err != nil {
		return stacktrace.Propagate(awsError(err), "could not assign security groups to %s", instanceID)
	}
	return nil
}
