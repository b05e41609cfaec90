package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"gopkg.in/yaml.v2"
)

const (
	// ConfigFileName is the run configuration file inside the config directory
	ConfigFileName = "resiliency.yaml"

	defaultHealthCheckTries = 40
	defaultHealthCheckDelay = 60
)

// ResiliencyConfig holds the run policy and the list of scenarios to iterate
type ResiliencyConfig struct {
	RunConfig        types.RunConfig
	FailureScenarios []types.ScenarioName
}

type resiliencyFile struct {
	Resiliency struct {
		RunConfig        types.RunConfig `yaml:"RUN_CONFIG"`
		FailureScenarios []string        `yaml:"FAILURE_SCENARIOS"`
	} `yaml:"RESILIENCY"`
}

// LoadResiliencyConfig reads <dir>/resiliency.yaml.
// A missing file is logged and yields the default policy, a malformed file is an error.
func LoadResiliencyConfig(dir string) (*ResiliencyConfig, error) {
	path := filepath.Join(dir, ConfigFileName)

	var file resiliencyFile
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Errorf("YAML file not found: %v", path)
	case err != nil:
		return nil, stacktrace.Propagate(err, "could not read %s", path)
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, stacktrace.Propagate(err, "could not parse %s", path)
		}
	}

	cfg := &ResiliencyConfig{RunConfig: file.Resiliency.RunConfig}
	if cfg.RunConfig.HealthCheckTries <= 0 {
		cfg.RunConfig.HealthCheckTries = defaultHealthCheckTries
	}
	if cfg.RunConfig.HealthCheckDelay <= 0 {
		cfg.RunConfig.HealthCheckDelay = defaultHealthCheckDelay
	}
	for _, name := range file.Resiliency.FailureScenarios {
		cfg.FailureScenarios = append(cfg.FailureScenarios, types.NormalizeScenarioName(name))
	}
	return cfg, nil
}

// HealthBudget returns the default post-injection health check budget of the run
func (c *ResiliencyConfig) HealthBudget() types.HealthBudget {
	return types.HealthBudget{
		Tries: c.RunConfig.HealthCheckTries,
		Delay: time.Duration(c.RunConfig.HealthCheckDelay) * time.Second,
	}
}

func (c *ResiliencyConfig) String() string {
	return fmt.Sprintf("ResiliencyConfig(stop_when_ceph_unhealthy=%v, iterate_scenarios=%v, failure_scenarios=%v)",
		c.RunConfig.StopWhenCephUnhealthy, c.RunConfig.IterateScenarios, c.FailureScenarios)
}
