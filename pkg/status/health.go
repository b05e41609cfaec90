package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/utils/retry"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
)

// statusCheckTimeout bounds a single health probe of the cluster
const statusCheckTimeout = 2 * time.Minute

// permanentError is a status check failure which retrying cannot clear
type permanentError struct {
	err cerrors.Error
}

func (e permanentError) Error() string {
	return e.err.Error()
}

func (e permanentError) Unwrap() error {
	return e.err
}

// listFailed builds the error of a failed list call, marking it permanent when
// the API server refused the request or does not serve the resource
func listFailed(err error, cerr cerrors.Error) error {
	if k8serrors.IsForbidden(err) || k8serrors.IsUnauthorized(err) || k8serrors.IsNotFound(err) || meta.IsNoMatchError(err) {
		return permanentError{cerr}
	}
	return cerr
}

func isRetriable(err error) bool {
	var permanent permanentError
	return !errors.As(err, &permanent)
}

// HealthChecker verifies that the storage cluster is healthy
type HealthChecker interface {
	// CheckHealth polls up to tries times, delay apart, and returns a HealthCheckFailed error on exhaustion
	CheckHealth(ctx context.Context, tries int, delay time.Duration) error
}

// CephHealthChecker requires every node Ready and every CephCluster HEALTH_OK
type CephHealthChecker struct {
	Clients   clients.ClientSets
	Namespace string
}

func (c CephHealthChecker) CheckHealth(ctx context.Context, tries int, delay time.Duration) error {
	log.Infof("[Status]: Verifying ceph health in %v, %v tries %v apart", c.Namespace, tries, delay)
	err := retry.
		Times(uint(tries)).
		Wait(delay).
		Timeout(statusCheckTimeout).
		RetryIf(isRetriable).
		TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			if err := CheckNodeStatus(ctx, c.Clients); err != nil {
				log.Infof("[Status]: Attempt %v: %v", attempt+1, err)
				return err
			}
			if err := CheckCephHealth(ctx, c.Clients, c.Namespace); err != nil {
				log.Infof("[Status]: Attempt %v: %v", attempt+1, err)
				return err
			}
			return nil
		})
	if err != nil {
		return cerrors.Error{
			ErrorCode: cerrors.ErrorTypeHealthCheckFailed,
			Reason:    err.Error(),
			Target:    fmt.Sprintf("{namespace: %s, tries: %d, delay: %s}", c.Namespace, tries, delay),
		}
	}
	log.Info("[Status]: Ceph cluster is healthy")
	return nil
}
