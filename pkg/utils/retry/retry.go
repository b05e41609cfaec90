package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
)

// Action defines the prototype of action function, function as a value
type Action func(attempt uint) error

// ContextAction is an Action which receives the per-attempt context
type ContextAction func(ctx context.Context, attempt uint) error

// Predicate decides whether a failed attempt may be retried
type Predicate func(err error) bool

// Model defines the schema, contains all the attributes need for retry
type Model struct {
	retry     uint
	waitTime  time.Duration
	timeout   time.Duration
	retriable Predicate
}

// Times is used to define the retry count
// it will run if the instance of model is not present before
func Times(retry uint) *Model {
	model := Model{}
	return model.Times(retry)
}

// Times is used to define the retry count
// it will run if the instance of model is already present
func (model *Model) Times(retry uint) *Model {
	model.retry = retry
	return model
}

// Wait is used to define the wait duration after each iteration of retry
// it will run if the instance of model is not present before
func Wait(waitTime time.Duration) *Model {
	model := Model{}
	return model.Wait(waitTime)
}

// Wait is used to define the wait duration after each iteration of retry
// it will run if the instance of model is already present
func (model *Model) Wait(waitTime time.Duration) *Model {
	model.waitTime = waitTime
	return model
}

// Timeout is used to define the timeout duration for each iteration of retry
func (model *Model) Timeout(timeout time.Duration) *Model {
	model.timeout = timeout
	return model
}

// RetryIf restricts retries to errors accepted by the predicate, other errors are returned at once
func (model *Model) RetryIf(retriable Predicate) *Model {
	model.retriable = retriable
	return model
}

// Try is used to run a action with retries and some delay between the iterations
func (model Model) Try(action Action) error {
	if action == nil {
		return fmt.Errorf("no action specified")
	}
	return model.TryWithContext(context.Background(), func(_ context.Context, attempt uint) error {
		return action(attempt)
	})
}

// TryWithContext runs the action until it succeeds, the attempts are exhausted,
// the error is not retriable or the context is done. The last action error is returned.
func (model Model) TryWithContext(ctx context.Context, action ContextAction) error {
	if action == nil {
		return fmt.Errorf("no action specified")
	}

	var err error
	for attempt := uint(0); attempt == 0 || attempt < model.retry; attempt++ {
		err = model.attempt(ctx, action, attempt)
		if err == nil {
			return nil
		}
		if model.retriable != nil && !model.retriable(err) {
			return err
		}
		if attempt+1 >= model.retry {
			break
		}
		if model.waitTime > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(model.waitTime):
			}
		} else if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (model Model) attempt(ctx context.Context, action ContextAction, attempt uint) error {
	if model.timeout <= 0 {
		return action(ctx, attempt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, model.timeout)
	defer cancel()

	err := action(attemptCtx, attempt)
	if err == nil && attemptCtx.Err() == context.DeadlineExceeded {
		return cerrors.Error{
			ErrorCode: cerrors.ErrorTypeTimeout,
			Reason:    "action timeout",
		}
	}
	return err
}
