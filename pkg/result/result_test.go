package result

import (
	"errors"
	"testing"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunState_Complete(t *testing.T) {
	state := NewRunState(types.NodeFailures, 2)
	assert.Equal(t, types.AwaitedVerdict, state.Verdict)

	state.RecordCase(types.FailureMethodPowerOffNode)
	state.RecordHealth(nil)
	state.RecordCase(types.FailureMethodPowerOffNode)
	state.RecordHealth(nil)
	state.Complete()

	summary := state.Summary()
	assert.Equal(t, types.PassVerdict, summary.Verdict)
	assert.Equal(t, 2, summary.CasesRun)
	assert.Equal(t, 2, summary.HealthPasses)
	assert.Equal(t, map[types.FailureMethod]int{types.FailureMethodPowerOffNode: 2}, summary.MethodCounts)
	assert.NoError(t, summary.HealthErrors)
	assert.Contains(t, summary.VerdictMessage(), types.PassVerdict)
}

func TestRunState_HealthFailuresFailTheRun(t *testing.T) {
	state := NewRunState(types.NetworkFailures, 2)
	state.RecordCase(types.FailureMethodNodeNetworkDown)
	state.RecordHealth(errors.New("HEALTH_WARN"))
	state.RecordCase(types.FailureMethodNodeNetworkDown)
	state.RecordHealth(errors.New("HEALTH_ERR"))
	state.Complete()

	summary := state.Summary()
	assert.Equal(t, types.FailVerdict, summary.Verdict)
	assert.Equal(t, HealthCheckPostChaos, summary.FailStep)
	assert.Equal(t, 2, summary.HealthFailures)
	require.Error(t, summary.HealthErrors)
	assert.Contains(t, summary.HealthErrors.Error(), "HEALTH_WARN")
	assert.Contains(t, summary.HealthErrors.Error(), "HEALTH_ERR")
}

func TestRunState_RecordAfterFailure(t *testing.T) {
	state := NewRunState(types.NodeFailures, 3)
	state.RecordAfterFailure(types.StoppedVerdict, HealthCheckPostChaos, errors.New("HEALTH_ERR"))

	summary := state.Summary()
	assert.Equal(t, types.StoppedVerdict, summary.Verdict)
	assert.Equal(t, types.PhaseComplete, state.Phase)
	assert.Equal(t, cerrors.ErrorTypeNonUserFriendly, summary.ErrorCode)
	summary.Log()
}

func TestRunState_RecordAfterFailureKeepsRootCauseCode(t *testing.T) {
	state := NewRunState(types.NetworkFailures, 1)
	cause := cerrors.Error{ErrorCode: cerrors.ErrorTypeHealthCheckFailed, Reason: "ceph is HEALTH_ERR"}
	state.RecordAfterFailure(types.StoppedVerdict, HealthCheckPostChaos, stacktrace.Propagate(cause, "post scenario check failed"))

	assert.Equal(t, cerrors.ErrorTypeHealthCheckFailed, state.Summary().ErrorCode)
}

func TestSummary_IsACopy(t *testing.T) {
	state := NewRunState(types.NodeFailures, 1)
	state.RecordCase(types.FailureMethodNodeDrain)
	summary := state.Summary()
	state.RecordCase(types.FailureMethodNodeDrain)
	assert.Equal(t, 1, summary.MethodCounts[types.FailureMethodNodeDrain])
}
