package providers

import (
	"testing"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform/fake"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{"aws", "baremetal", "gcp", "ibmcloud", "vsphere"}, Registry().Names())
}

func TestGetClusterPlatform(t *testing.T) {
	p, err := GetClusterPlatform(types.PlatformDetails{Platform: "vSphere"}, fake.NewPlatform())
	require.NoError(t, err)
	assert.Equal(t, "vsphere", p.Name())
}

func TestGetClusterPlatform_Unsupported(t *testing.T) {
	tests := []string{"", "azure", "openstack"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := GetClusterPlatform(types.PlatformDetails{Platform: name}, fake.NewPlatform())
			require.Error(t, err)
			assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeUnsupportedPlatform))
		})
	}
}
