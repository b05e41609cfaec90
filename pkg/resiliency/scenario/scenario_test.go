package scenario

import (
	"testing"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	assert.Equal(t, DefaultOutageDuration, opts.OutageDuration)
	assert.NotNil(t, opts.Wait)

	opts = Options{OutageDuration: time.Second}.WithDefaults()
	assert.Equal(t, time.Second, opts.OutageDuration)
}

func TestOptions_Hold(t *testing.T) {
	opts := Options{OutageDuration: time.Minute}
	assert.Equal(t, time.Minute, opts.Hold(types.FailureParameters{}))

	duration := 5
	assert.Equal(t, 5*time.Second, opts.Hold(types.FailureParameters{Duration: &duration}))

	zero := 0
	assert.Equal(t, time.Minute, opts.Hold(types.FailureParameters{Duration: &zero}))
}

func TestState(t *testing.T) {
	var s State
	assert.Equal(t, types.PhaseIdle, s.Phase())
	s.SetPhase(types.PhaseInjecting)
	assert.Equal(t, types.PhaseInjecting, s.Phase())
}

func TestUnsupportedFailureMethod(t *testing.T) {
	err := UnsupportedFailureMethod(types.NodeFailures, types.FailureMethodNodeNetworkDown)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeUnsupportedFailureMethod))
	assert.Contains(t, err.Error(), "NODE_NETWORK_DOWN")
}

func TestValidateRoles(t *testing.T) {
	assert.NoError(t, ValidateRoles([]types.NodeRole{types.MasterRole, types.WorkerRole}))
	assert.Error(t, ValidateRoles([]types.NodeRole{"infra"}))
}
