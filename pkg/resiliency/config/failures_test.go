package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const nodeFailuresYAML = `
NODE_FAILURES:
  WORKLOAD: FIO
  FAILURES:
    - POWEROFF_NODE:
        NODE_TYPE: ["worker"]
        ITERATION: 2
    - NODE_DRAIN:
        NODE_TYPE: ["worker", "master"]
    - POWEROFF_NODE:
        NODE_TYPE: ["master"]
        ITERATION: 1
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "node_failures.yaml", nodeFailuresYAML)

	definition, err := LoadScenario(dir, types.NodeFailures)
	require.NoError(t, err)

	assert.Equal(t, types.NodeFailures, definition.Name)
	assert.Equal(t, "FIO", definition.Workload)
	require.Equal(t, 3, definition.Failures.Len())

	first := definition.Failures[0]
	assert.Equal(t, types.FailureMethodPowerOffNode, first.Method)
	assert.Equal(t, []types.NodeRole{types.WorkerRole}, first.Parameters.NodeType)
	require.NotNil(t, first.Parameters.Iteration)
	assert.Equal(t, 2, *first.Parameters.Iteration)
	assert.Contains(t, first.Raw, "ITERATION")

	assert.Equal(t, types.FailureMethodNodeDrain, definition.Failures[1].Method)
	assert.Nil(t, definition.Failures[1].Parameters.Iteration)
}

func TestLoadScenario_LookupIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "node_failures.yaml", nodeFailuresYAML)

	definition, err := LoadScenario(dir, types.ScenarioName("node_failures"))
	require.NoError(t, err)
	assert.Equal(t, 3, definition.Failures.Len())
}

func TestLoadScenario_EmptyFailuresList(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "network_failures.yaml", "NETWORK_FAILURES:\n  WORKLOAD: FIO\n  FAILURES: []\n")

	definition, err := LoadScenario(dir, types.NetworkFailures)
	require.NoError(t, err)
	assert.Equal(t, 0, definition.Failures.Len())
}

func TestLoadScenario_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "node_failures.yaml", "OTHER_SCENARIO:\n  FAILURES: []\n")

	tests := []struct {
		name     string
		scenario types.ScenarioName
	}{
		{name: "missing file", scenario: types.NetworkFailures},
		{name: "missing top level key", scenario: types.NodeFailures},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(dir, tt.scenario)
			require.Error(t, err)
			assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeScenarioNotFound), "got %v", err)
		})
	}
}

func TestLoadScenario_RejectsMalformedCases(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType cerrors.ErrorType
	}{
		{
			name:     "unknown failure method",
			content:  "NODE_FAILURES:\n  FAILURES:\n    - DISK_FAILURE: {}\n",
			wantType: cerrors.ErrorTypeUnsupportedFailureMethod,
		},
		{
			name:     "multiple failure methods in one case",
			content:  "NODE_FAILURES:\n  FAILURES:\n    - POWEROFF_NODE: {ITERATION: 1}\n      NODE_DRAIN: {}\n",
			wantType: cerrors.ErrorTypeScenarioNotFound,
		},
		{
			name:     "bad iteration type",
			content:  "NODE_FAILURES:\n  FAILURES:\n    - POWEROFF_NODE: {ITERATION: many}\n",
			wantType: cerrors.ErrorTypeScenarioNotFound,
		},
		{
			name:     "not a yaml document",
			content:  "NODE_FAILURES: [unclosed\n",
			wantType: cerrors.ErrorTypeScenarioNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeScenario(t, dir, "node_failures.yaml", tt.content)

			_, err := LoadScenario(dir, types.NodeFailures)
			require.Error(t, err)
			assert.True(t, cerrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestNewResiliencyFailures_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "node_failures.yaml", nodeFailuresYAML)

	rf, err := NewResiliencyFailures(dir, types.NodeFailures, "POWEROFF_NODE")
	require.NoError(t, err)
	assert.Equal(t, "FIO", rf.Workload())
	assert.Equal(t, 2, rf.Failures().Len())
	for _, c := range rf.All() {
		assert.Equal(t, types.FailureMethodPowerOffNode, c.Method)
	}

	// filtering on a method that is present in zero entries is not an error
	rf, err = NewResiliencyFailures(dir, types.NodeFailures, "NODE_NETWORK_DOWN")
	require.NoError(t, err)
	assert.Equal(t, 0, rf.Failures().Len())
	count := 0
	for range rf.All() {
		count++
	}
	assert.Zero(t, count)
}

func TestNewResiliencyFailures_UnknownFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "node_failures.yaml", nodeFailuresYAML)

	_, err := NewResiliencyFailures(dir, types.NodeFailures, "REBOOT_EVERYTHING")
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeUnsupportedFailureMethod))
}

func TestParseFailureCase_EmptyParameters(t *testing.T) {
	var entry yaml.MapSlice
	require.NoError(t, yaml.Unmarshal([]byte("NODE_NETWORK_DOWN: {}"), &entry))

	failureCase, err := ParseFailureCase(entry)
	require.NoError(t, err)
	assert.Equal(t, types.FailureMethodNodeNetworkDown, failureCase.Method)
	assert.Empty(t, failureCase.Parameters.NodeType)

	require.NoError(t, yaml.Unmarshal([]byte("POD_NETWORK_FAILURE:"), &entry))
	failureCase, err = ParseFailureCase(entry)
	require.NoError(t, err)
	assert.Equal(t, types.FailureMethodPodNetworkFailure, failureCase.Method)
}
