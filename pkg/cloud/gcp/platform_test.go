package gcp

import (
	"context"
	"testing"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform/fake"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/compute/v1"
)

type fakeInstances struct {
	byZone map[string][]*compute.Instance
	ops    []string
}

func (f *fakeInstances) List(_ context.Context, _, zone string) ([]*compute.Instance, error) {
	return f.byZone[zone], nil
}

func (f *fakeInstances) find(zone, name string) *compute.Instance {
	for _, instance := range f.byZone[zone] {
		if instance.Name == name {
			return instance
		}
	}
	return nil
}

func (f *fakeInstances) Get(_ context.Context, _, zone, name string) (*compute.Instance, error) {
	return f.find(zone, name), nil
}

func (f *fakeInstances) Stop(_ context.Context, _, zone, name string) error {
	f.find(zone, name).Status = statusTerminated
	f.ops = append(f.ops, "stop:"+zone+"/"+name)
	return nil
}

func (f *fakeInstances) Start(_ context.Context, _, zone, name string) error {
	f.find(zone, name).Status = statusRunning
	f.ops = append(f.ops, "start:"+zone+"/"+name)
	return nil
}

func newFakeInstances() *fakeInstances {
	instance := func(name, ip string) *compute.Instance {
		return &compute.Instance{
			Name:              name,
			Status:            statusRunning,
			NetworkInterfaces: []*compute.NetworkInterface{{NetworkIP: ip}},
		}
	}
	return &fakeInstances{byZone: map[string][]*compute.Instance{
		"us-central1-a": {instance("master-0", "10.0.0.1")},
		"us-central1-b": {instance("worker-0", "10.0.1.1")},
	}}
}

func newTestPlatform(instances *fakeInstances) *Platform {
	p := newPlatform(instances, types.GCPDetails{ProjectID: "proj", Zones: []string{"us-central1-a", "us-central1-b"}}, fake.NewPlatform(), time.Second)
	p.wait = func(context.Context, time.Duration) error { return nil }
	p.stateDelay = time.Millisecond
	p.stateTimeout = 10 * time.Millisecond
	return p
}

func TestRebootNode_SearchesAllZones(t *testing.T) {
	instances := newFakeInstances()
	p := newTestPlatform(instances)

	require.NoError(t, p.RebootNode(context.Background(), "10.0.1.1"))
	assert.Equal(t, []string{"stop:us-central1-b/worker-0", "start:us-central1-b/worker-0"}, instances.ops)
}

func TestSetNodePower_UnknownAddress(t *testing.T) {
	p := newTestPlatform(newFakeInstances())
	err := p.SetNodePower(context.Background(), "10.9.9.9", false)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeTargetSelection))
}

func TestNew_RequiresProjectAndZones(t *testing.T) {
	_, err := New(types.PlatformDetails{}, fake.NewPlatform())
	assert.Error(t, err)
}

func TestNetworkOperations_NotImplemented(t *testing.T) {
	p := newTestPlatform(newFakeInstances())
	err := p.SetNodeNetworkInterface(context.Background(), "10.0.1.1", types.WorkerRole, false)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeNotImplemented))
}
