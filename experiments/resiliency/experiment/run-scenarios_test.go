package experiment

import (
	"context"
	"testing"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform/fake"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenarios_IterateScenarios(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"node_failures.yaml":    nodeFailuresYAML,
		"network_failures.yaml": networkFailuresYAML,
	})
	cluster := fake.NewPlatform()
	health := &fakeHealth{}
	deps := newDeps(dir, cluster, health, false)
	deps.Config.RunConfig.IterateScenarios = true
	deps.Config.FailureScenarios = []types.ScenarioName{types.NodeFailures, types.NetworkFailures}

	summaries, err := RunScenarios(context.Background(), "", deps)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, types.NodeFailures, summaries[0].Scenario)
	assert.Equal(t, types.NetworkFailures, summaries[1].Scenario)
	assert.Len(t, health.calls, 2)
}

func TestRunScenarios_OnlyFirstWithoutIteration(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"node_failures.yaml":    nodeFailuresYAML,
		"network_failures.yaml": networkFailuresYAML,
	})
	cluster := fake.NewPlatform()
	deps := newDeps(dir, cluster, &fakeHealth{}, false)
	deps.Config.FailureScenarios = []types.ScenarioName{types.NetworkFailures, types.NodeFailures}

	summaries, err := RunScenarios(context.Background(), "", deps)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, types.NetworkFailures, summaries[0].Scenario)
	assert.Empty(t, cluster.Recorded("RebootNode"))
}

func TestRunScenarios_UnsupportedScenarioFailsFirst(t *testing.T) {
	dir := writeConfig(t, map[string]string{"node_failures.yaml": nodeFailuresYAML})
	cluster := fake.NewPlatform()
	deps := newDeps(dir, cluster, &fakeHealth{}, false)
	deps.Config.RunConfig.IterateScenarios = true
	deps.Config.FailureScenarios = []types.ScenarioName{types.NodeFailures, "DISK_FAILURES"}

	_, err := RunScenarios(context.Background(), "", deps)
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeUnsupportedScenario))
	assert.Empty(t, cluster.Recorded(""))
}

func TestRunScenarios_InvalidLaterScenarioFailsBeforeInjection(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"node_failures.yaml": nodeFailuresYAML,
		"network_failures.yaml": `
NETWORK_FAILURES:
  FAILURES:
    - NETWORK_SPLIT: {NODE_COUNT: 0}
`,
	})
	cluster := fake.NewPlatform()
	health := &fakeHealth{}
	deps := newDeps(dir, cluster, health, false)
	deps.Config.RunConfig.IterateScenarios = true
	deps.Config.FailureScenarios = []types.ScenarioName{types.NodeFailures, types.NetworkFailures}

	summaries, err := RunScenarios(context.Background(), "", deps)
	require.Error(t, err)
	assert.Empty(t, summaries)
	assert.Empty(t, cluster.Recorded(""))
	assert.Empty(t, health.calls)
}

func TestRunScenarios_StopsOnUnhealthyCluster(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"node_failures.yaml":    nodeFailuresYAML,
		"network_failures.yaml": networkFailuresYAML,
	})
	cluster := fake.NewPlatform()
	deps := newDeps(dir, cluster, &fakeHealth{err: unhealthy()}, true)
	deps.Config.RunConfig.IterateScenarios = true
	deps.Config.FailureScenarios = []types.ScenarioName{types.NodeFailures, types.NetworkFailures}

	summaries, err := RunScenarios(context.Background(), "", deps)
	require.Error(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, types.StoppedVerdict, summaries[0].Verdict)
	assert.Empty(t, cluster.Recorded("SetNodeNetworkInterface"))
}

func TestSupportedScenarios(t *testing.T) {
	assert.Equal(t, []types.ScenarioName{types.NetworkFailures, types.NodeFailures}, SupportedScenarios())
}
