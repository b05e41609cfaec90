package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
)

func TestTimesWaitTimeout(t *testing.T) {
	model := Times(5).Wait(2 * time.Second).Timeout(3 * time.Second)

	if model.retry != 5 {
		t.Errorf("expected retry=5, got %d", model.retry)
	}
	if model.waitTime != 2*time.Second {
		t.Errorf("expected waitTime=2s, got %s", model.waitTime)
	}
	if model.timeout != 3*time.Second {
		t.Errorf("expected timeout=3s, got %s", model.timeout)
	}
}

func TestTry_ActionSucceedsImmediately(t *testing.T) {
	model := Times(3).Wait(0)

	calls := 0
	err := model.Try(func(attempt uint) error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestTry_ActionFailsThenSucceeds(t *testing.T) {
	model := Times(3).Wait(0)

	calls := 0
	err := model.Try(func(attempt uint) error {
		calls++
		if attempt < 1 {
			return errors.New("fail")
		}
		return nil
	})
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestTry_ActionAlwaysFails(t *testing.T) {
	model := Times(3).Wait(time.Millisecond)

	calls := 0
	err := model.Try(func(attempt uint) error {
		calls++
		return errors.New("fail")
	})
	if err == nil {
		t.Error("expected error, got nil")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestTry_ZeroTimesRunsOnce(t *testing.T) {
	calls := 0
	_ = Times(0).Try(func(attempt uint) error {
		calls++
		return errors.New("fail")
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryIf_StopsOnNonRetriableError(t *testing.T) {
	fatal := errors.New("container is in terminated state")
	model := Times(5).Wait(0).RetryIf(func(err error) bool { return err != fatal })

	calls := 0
	err := model.Try(func(attempt uint) error {
		calls++
		return fatal
	})
	if err != fatal {
		t.Errorf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call (break on non retriable), got %d", calls)
	}
}

func TestTryWithContext_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := Times(10).Wait(time.Hour)

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- model.TryWithContext(ctx, func(ctx context.Context, attempt uint) error {
			calls++
			return errors.New("unhealthy")
		})
	}()
	cancel()

	select {
	case err := <-errCh:
		if err == nil || err.Error() != "unhealthy" {
			t.Errorf("expected last action error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestTryWithContext_ExceedsTimeout(t *testing.T) {
	model := Times(3).Timeout(10 * time.Millisecond).Wait(0)

	err := model.TryWithContext(context.Background(), func(ctx context.Context, attempt uint) error {
		<-ctx.Done()
		return nil
	})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	var cerr cerrors.Error
	if !errors.As(err, &cerr) || cerr.ErrorCode != cerrors.ErrorTypeTimeout {
		t.Errorf("expected timeout cerror, got %v", err)
	}
}

func TestTryWithContext_SucceedsWithinTimeout(t *testing.T) {
	model := Times(3).Timeout(time.Second).Wait(0)

	called := 0
	err := model.TryWithContext(context.Background(), func(ctx context.Context, attempt uint) error {
		called++
		return nil
	})
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected 1 call, got %d", called)
	}
}

func TestTry_NilAction(t *testing.T) {
	if err := Times(2).Try(nil); err == nil {
		t.Error("expected error for nil action, got nil")
	}
	if err := Times(2).TryWithContext(context.Background(), nil); err == nil {
		t.Error("expected error for nil action, got nil")
	}
}
