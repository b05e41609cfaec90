package environment

import (
	"strconv"
	"strings"

	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
)

// GetENV fetches all the platform and run details from the environment
func GetENV(details *types.PlatformDetails) {
	details.Platform = strings.ToLower(types.Getenv("PLATFORM", ""))
	details.KubeConfig = types.Getenv("KUBECONFIG", "")
	details.ConfigDir = types.Getenv("RESILIENCY_CONFIG_DIR", "conf/resiliency")
	details.StorageNamespace = types.Getenv("STORAGE_NAMESPACE", "openshift-storage")
	details.RebootSettleInterval, _ = strconv.Atoi(types.Getenv("REBOOT_SETTLE_INTERVAL", "20"))
	details.NetworkOutageDuration, _ = strconv.Atoi(types.Getenv("NETWORK_OUTAGE_DURATION", "60"))
	details.LogLevel = types.Getenv("LOG_LEVEL", "info")

	details.Vsphere.Server = types.Getenv("VSPHERE_SERVER", "")
	details.Vsphere.User = types.Getenv("VSPHERE_USER", "")
	details.Vsphere.Password = types.Getenv("VSPHERE_PASSWORD", "")
	details.Vsphere.Datacenter = types.Getenv("VSPHERE_DATACENTER", "")

	details.AWS.Region = types.Getenv("AWS_REGION", "us-east-2")

	details.IBMCloud.APIKey = types.Getenv("IBMCLOUD_API_KEY", "")
	details.IBMCloud.VPCURL = types.Getenv("IBMCLOUD_VPC_URL", "https://us-south.iaas.cloud.ibm.com/v1")

	details.GCP.ProjectID = types.Getenv("GCP_PROJECT_ID", "")
	details.GCP.Zones = splitList(types.Getenv("GCP_ZONES", ""))
	details.GCP.CredentialsFile = types.Getenv("GCP_CREDENTIALS_FILE", "")

	details.BMCInventory = types.Getenv("BMC_INVENTORY", "")
	details.OTELEndpoint = types.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	details.MetricsAddr = types.Getenv("METRICS_ADDR", "")
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
