package cerrors

import (
	"errors"

	"github.com/palantir/stacktrace"
)

type ErrorType string

const (
	ErrorTypeNonUserFriendly          ErrorType = "NON_USER_FRIENDLY_ERROR"
	ErrorTypeGeneric                  ErrorType = "GENERIC_ERROR"
	ErrorTypeTargetSelection          ErrorType = "TARGET_SELECTION_ERROR"
	ErrorTypeChaosInject              ErrorType = "CHAOS_INJECT_ERROR"
	ErrorTypeChaosRevert              ErrorType = "CHAOS_REVERT_ERROR"
	ErrorTypeStatusChecks             ErrorType = "STATUS_CHECKS_ERROR"
	ErrorTypeTimeout                  ErrorType = "TIMEOUT"
	ErrorTypeUnsupportedPlatform      ErrorType = "UNSUPPORTED_PLATFORM"
	ErrorTypeUnsupportedScenario      ErrorType = "UNSUPPORTED_SCENARIO"
	ErrorTypeUnsupportedFailureMethod ErrorType = "UNSUPPORTED_FAILURE_METHOD"
	ErrorTypeScenarioNotFound         ErrorType = "SCENARIO_NOT_FOUND"
	ErrorTypeNotImplemented           ErrorType = "NOT_IMPLEMENTED"
	ErrorTypeHealthCheckFailed        ErrorType = "HEALTH_CHECK_FAILED"
)

type userFriendly interface {
	UserFriendly() bool
	ErrorType() ErrorType
}

// IsUserFriendly returns true if err is marked as safe to present in the run summary
func IsUserFriendly(err error) bool {
	ufe, ok := err.(userFriendly)
	return ok && ufe.UserFriendly()
}

// GetErrorType returns the type of error if the error is user-friendly
func GetErrorType(err error) ErrorType {
	if ufe, ok := err.(userFriendly); ok {
		return ufe.ErrorType()
	}
	return ErrorTypeNonUserFriendly
}

// GetRootCauseAndErrorCode unwraps the stacktrace chain and returns the message and code of the root cause
func GetRootCauseAndErrorCode(err error) (string, ErrorType) {
	rootCause := stacktrace.RootCause(err)
	errorType := GetErrorType(rootCause)
	if !IsUserFriendly(rootCause) {
		return err.Error(), errorType
	}
	return rootCause.Error(), errorType
}

// IsType reports whether err, or any error it wraps, is a cerrors.Error with the given code.
// Both stacktrace propagation and fmt/%w style wrapping are followed.
func IsType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var cerr Error
	if errors.As(err, &cerr) && cerr.ErrorCode == errorType {
		return true
	}
	rootCause := stacktrace.RootCause(err)
	if rootCause != err && errors.As(rootCause, &cerr) {
		return cerr.ErrorCode == errorType
	}
	return false
}
