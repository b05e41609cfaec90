package environment

import (
	"testing"

	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestGetENV_Defaults(t *testing.T) {
	for _, key := range []string{"PLATFORM", "STORAGE_NAMESPACE", "REBOOT_SETTLE_INTERVAL", "NETWORK_OUTAGE_DURATION", "GCP_ZONES"} {
		t.Setenv(key, "")
	}

	var details types.PlatformDetails
	GetENV(&details)

	assert.Equal(t, "", details.Platform)
	assert.Equal(t, "openshift-storage", details.StorageNamespace)
	assert.Equal(t, 20, details.RebootSettleInterval)
	assert.Equal(t, 60, details.NetworkOutageDuration)
	assert.Empty(t, details.GCP.Zones)
}

func TestGetENV_Overrides(t *testing.T) {
	t.Setenv("PLATFORM", "vSphere")
	t.Setenv("REBOOT_SETTLE_INTERVAL", "5")
	t.Setenv("GCP_ZONES", "us-central1-a, us-central1-b,,")
	t.Setenv("VSPHERE_SERVER", "vcenter.example.com")

	var details types.PlatformDetails
	GetENV(&details)

	assert.Equal(t, "vsphere", details.Platform)
	assert.Equal(t, 5, details.RebootSettleInterval)
	assert.Equal(t, []string{"us-central1-a", "us-central1-b"}, details.GCP.Zones)
	assert.Equal(t, "vcenter.example.com", details.Vsphere.Server)
}
