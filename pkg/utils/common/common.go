package common

import (
	"context"
	"math/rand/v2"
	"time"
)

// WaitForDuration waits for the given duration, returning early with the context error on cancellation
func WaitForDuration(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetRunID generate a random string
func GetRunID() string {
	var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz")
	runID := make([]rune, 6)
	for i := range runID {
		runID[i] = letterRunes[rand.IntN(len(letterRunes))]
	}
	return string(runID)
}
