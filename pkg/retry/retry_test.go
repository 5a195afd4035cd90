package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithMaxAttempts(5), WithBaseDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return boom
	}, WithMaxAttempts(2), WithBaseDelay(time.Millisecond))

	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDo_NotRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return permanent
	}, WithMaxAttempts(5), WithBaseDelay(time.Millisecond), WithRetryable(func(err error) bool {
		return !errors.Is(err, permanent)
	}))

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("fail")
	}, WithMaxAttempts(3), WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0, time.Second, 30*time.Second))
	assert.Equal(t, 4*time.Second, calculateBackoff(2, time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, calculateBackoff(10, time.Second, 30*time.Second))
}
