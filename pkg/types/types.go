package types

import (
	"fmt"
	"iter"
	"os"
	"strings"
	"time"
)

const (
	// AwaitedVerdict marked the start of the run
	AwaitedVerdict string = "Awaited"
	// PassVerdict marked the verdict as passed in the end of the run
	PassVerdict string = "Pass"
	// FailVerdict marked the verdict as failed in the end of the run
	FailVerdict string = "Fail"
	// StoppedVerdict marked the verdict when the run was halted on an unhealthy cluster
	StoppedVerdict string = "Stopped"
)

// ScenarioName identifies a category of induced fault
type ScenarioName string

const (
	NodeFailures    ScenarioName = "NODE_FAILURES"
	NetworkFailures ScenarioName = "NETWORK_FAILURES"
)

// NormalizeScenarioName returns the canonical, upper-cased scenario name
func NormalizeScenarioName(name string) ScenarioName {
	return ScenarioName(strings.ToUpper(strings.TrimSpace(name)))
}

// FailureMethod selects one injection operation within a scenario
type FailureMethod string

const (
	FailureMethodUnknown           FailureMethod = ""
	FailureMethodPowerOffNode      FailureMethod = "POWEROFF_NODE"
	FailureMethodNodeDrain         FailureMethod = "NODE_DRAIN"
	FailureMethodPodNetworkFailure FailureMethod = "POD_NETWORK_FAILURE"
	FailureMethodNodeNetworkDown   FailureMethod = "NODE_NETWORK_DOWN"
	FailureMethodNetworkSplit      FailureMethod = "NETWORK_SPLIT"
)

var knownFailureMethods = []FailureMethod{
	FailureMethodPowerOffNode,
	FailureMethodNodeDrain,
	FailureMethodPodNetworkFailure,
	FailureMethodNodeNetworkDown,
	FailureMethodNetworkSplit,
}

// ParseFailureMethod maps a configured identifier onto a known method.
// Identifiers outside the known set map to FailureMethodUnknown.
func ParseFailureMethod(identifier string) FailureMethod {
	for _, method := range knownFailureMethods {
		if string(method) == identifier {
			return method
		}
	}
	return FailureMethodUnknown
}

// NodeRole is the role tag of a cluster node
type NodeRole string

const (
	MasterRole NodeRole = "master"
	WorkerRole NodeRole = "worker"
)

// Valid reports whether the role is one of the known node roles
func (r NodeRole) Valid() bool {
	return r == MasterRole || r == WorkerRole
}

// Phase is a step of the scenario or runner state machine
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseInjecting  Phase = "INJECTING"
	PhaseRecovering Phase = "RECOVERING"
	PhaseDone       Phase = "DONE"

	PhaseReady    Phase = "READY"
	PhaseInject   Phase = "INJECT"
	PhaseCheck    Phase = "CHECK"
	PhaseComplete Phase = "COMPLETE"
)

// FailureParameters is the typed parameter record of a failure case
type FailureParameters struct {
	NodeType  []NodeRole `yaml:"NODE_TYPE,omitempty"`
	Iteration *int       `yaml:"ITERATION,omitempty"`
	// Duration is the induced outage window in seconds
	Duration  *int `yaml:"DURATION,omitempty"`
	NodeCount *int `yaml:"NODE_COUNT,omitempty"`
}

// FailureCase is one concrete, parameterised instance of a failure method
type FailureCase struct {
	Method     FailureMethod
	Parameters FailureParameters
	// Raw keeps the parameter mapping as configured, for logging
	Raw map[string]interface{}
}

func (f FailureCase) String() string {
	return fmt.Sprintf("{%s: %v}", f.Method, f.Raw)
}

// FailureCaseList is an ordered, finite list of failure cases
type FailureCaseList []FailureCase

// All yields the cases in order, every call starts again at the head of the list
func (l FailureCaseList) All() iter.Seq2[int, FailureCase] {
	return func(yield func(int, FailureCase) bool) {
		for i, c := range l {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Len returns the number of cases
func (l FailureCaseList) Len() int {
	return len(l)
}

// Filter returns the cases whose method equals the given method
func (l FailureCaseList) Filter(method FailureMethod) FailureCaseList {
	filtered := FailureCaseList{}
	for _, c := range l {
		if c.Method == method {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// ScenarioDefinition is a named scenario loaded from configuration
type ScenarioDefinition struct {
	Name     ScenarioName
	Workload string
	Failures FailureCaseList
}

// RunConfig is the run policy of the resiliency run
type RunConfig struct {
	StopWhenCephUnhealthy bool `yaml:"STOP_WHEN_CEPH_UNHEALTHY"`
	IterateScenarios      bool `yaml:"ITERATE_SCENARIOS"`
	HealthCheckTries      int  `yaml:"HEALTH_CHECK_TRIES,omitempty"`
	// HealthCheckDelay is in seconds
	HealthCheckDelay int `yaml:"HEALTH_CHECK_DELAY,omitempty"`
}

// HealthBudget is the retry budget of a post-injection health check
type HealthBudget struct {
	Tries int
	Delay time.Duration
}

func (b HealthBudget) String() string {
	return fmt.Sprintf("%d tries / %s delay", b.Tries, b.Delay)
}

// PlatformDetails is for collecting all the platform and run related details
type PlatformDetails struct {
	Platform              string
	KubeConfig            string
	ConfigDir             string
	StorageNamespace      string
	RebootSettleInterval  int
	NetworkOutageDuration int
	Vsphere               VsphereDetails
	AWS                   AWSDetails
	IBMCloud              IBMCloudDetails
	GCP                   GCPDetails
	BMCInventory          string
	OTELEndpoint          string
	MetricsAddr           string
	LogLevel              string
}

// VsphereDetails contains the vCenter access details
type VsphereDetails struct {
	Server     string
	User       string
	Password   string
	Datacenter string
}

// AWSDetails contains the AWS access details
type AWSDetails struct {
	Region string
}

// IBMCloudDetails contains the IBM Cloud VPC access details
type IBMCloudDetails struct {
	APIKey string
	VPCURL string
}

// GCPDetails contains the GCP access details
type GCPDetails struct {
	ProjectID       string
	Zones           []string
	CredentialsFile string
}

// Getenv fetch the env and set the default value, if any
func Getenv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return value
}
