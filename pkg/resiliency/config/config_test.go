package config

import (
	"testing"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadResiliencyConfig(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, ConfigFileName, `
RESILIENCY:
  RUN_CONFIG:
    STOP_WHEN_CEPH_UNHEALTHY: true
    ITERATE_SCENARIOS: true
    HEALTH_CHECK_DELAY: 30
  FAILURE_SCENARIOS:
    - node_failures
    - NETWORK_FAILURES
`)

	cfg, err := LoadResiliencyConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.RunConfig.StopWhenCephUnhealthy)
	assert.True(t, cfg.RunConfig.IterateScenarios)
	assert.Equal(t, []types.ScenarioName{types.NodeFailures, types.NetworkFailures}, cfg.FailureScenarios)
	assert.Equal(t, types.HealthBudget{Tries: 40, Delay: 30 * time.Second}, cfg.HealthBudget())
}

func TestLoadResiliencyConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadResiliencyConfig(t.TempDir())
	require.NoError(t, err)
	assert.False(t, cfg.RunConfig.StopWhenCephUnhealthy)
	assert.False(t, cfg.RunConfig.IterateScenarios)
	assert.Empty(t, cfg.FailureScenarios)
	assert.Equal(t, types.HealthBudget{Tries: 40, Delay: time.Minute}, cfg.HealthBudget())
}

func TestLoadResiliencyConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, ConfigFileName, "RESILIENCY: [oops\n")

	_, err := LoadResiliencyConfig(dir)
	assert.Error(t, err)
}
