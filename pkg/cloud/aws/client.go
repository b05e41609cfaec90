package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/palantir/stacktrace"
)

// GetNewEC2Client creates an EC2 client for the region from the shared config and environment credentials
func GetNewEC2Client(region string) (ec2iface.EC2API, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            aws.Config{Region: aws.String(region)},
	})
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not create aws session for region %s", region)
	}
	return ec2.New(sess), nil
}
