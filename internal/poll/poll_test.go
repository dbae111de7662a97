package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilStopsOnDone(t *testing.T) {
	calls := 0
	err := Until(context.Background(), 10, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntilStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Until(context.Background(), 10, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestUntilExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Until(context.Background(), 10, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})

	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, 10, calls)
}

func TestUntilRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Until(ctx, 100, 50*time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		cancel()
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestUntilRejectsInvalidAttempts(t *testing.T) {
	err := Until(context.Background(), 0, time.Millisecond, func(ctx context.Context) (bool, error) {
		t.Fatal("fn should not be called")
		return false, nil
	})

	assert.Error(t, err)
}
