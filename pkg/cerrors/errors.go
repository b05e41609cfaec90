package cerrors

import (
	"encoding/json"
	"fmt"
)

// Error is the structured error returned across the harness.
// Phase names the runner or scenario phase that failed, Target the resource under fault.
type Error struct {
	ErrorCode ErrorType `json:"errorCode"`
	Phase     string    `json:"phase,omitempty"`
	Reason    string    `json:"reason"`
	Target    string    `json:"target,omitempty"`
}

func (e Error) Error() string {
	out, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.Reason)
	}
	return string(out)
}

func (e Error) UserFriendly() bool {
	return true
}

func (e Error) ErrorType() ErrorType {
	return e.ErrorCode
}

// NotImplemented returns the error for an operation that is known but not built for a platform
func NotImplemented(platformName, operation string) Error {
	return Error{
		ErrorCode: ErrorTypeNotImplemented,
		Reason:    fmt.Sprintf("operation '%s' is not implemented", operation),
		Target:    fmt.Sprintf("{platform: %s, operation: %s}", platformName, operation),
	}
}
