package cerrors

import (
	"fmt"
	"testing"

	"github.com/palantir/stacktrace"
	"github.com/stretchr/testify/assert"
)

func TestErrorRendersJSON(t *testing.T) {
	err := Error{ErrorCode: ErrorTypeGeneric, Reason: "bad input"}
	assert.EqualError(t, err, `{"errorCode":"GENERIC_ERROR","reason":"bad input"}`)

	err = Error{ErrorCode: ErrorTypeNotImplemented, Phase: "INJECTING", Reason: "nope", Target: "{platform: aws}"}
	assert.EqualError(t, err, `{"errorCode":"NOT_IMPLEMENTED","phase":"INJECTING","reason":"nope","target":"{platform: aws}"}`)
}

func TestIsType(t *testing.T) {
	base := NotImplemented("IBM Cloud", "network_split")

	assert.True(t, IsType(base, ErrorTypeNotImplemented))
	assert.True(t, IsType(stacktrace.Propagate(base, "could not split"), ErrorTypeNotImplemented))
	assert.True(t, IsType(fmt.Errorf("wrapped: %w", base), ErrorTypeNotImplemented))
	assert.False(t, IsType(base, ErrorTypeHealthCheckFailed))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNotImplemented))
	assert.False(t, IsType(nil, ErrorTypeNotImplemented))
}

func TestGetRootCauseAndErrorCode(t *testing.T) {
	base := Error{ErrorCode: ErrorTypeHealthCheckFailed, Reason: "ceph is HEALTH_WARN"}
	msg, code := GetRootCauseAndErrorCode(stacktrace.Propagate(base, "post-injection check"))
	assert.Equal(t, ErrorTypeHealthCheckFailed, code)
	assert.Equal(t, base.Error(), msg)

	plain := fmt.Errorf("dial tcp: refused")
	msg, code = GetRootCauseAndErrorCode(plain)
	assert.Equal(t, ErrorTypeNonUserFriendly, code)
	assert.Equal(t, plain.Error(), msg)
}
