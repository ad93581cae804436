package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil(t *testing.T) {
	calls := 0
	err := Until(context.Background(), Settings{Interval: time.Millisecond, MaxInterval: 2 * time.Millisecond}, func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntilStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := Until(context.Background(), DefaultSettings(), func() (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestUntilHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := Until(ctx, Settings{Interval: 5 * time.Millisecond}, func() (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNormalized(t *testing.T) {
	s := Settings{}.Normalized()
	assert.Equal(t, DefaultInterval, s.Interval)
	assert.Equal(t, DefaultInterval, s.MaxInterval)

	s = Settings{Interval: time.Second, MaxInterval: time.Millisecond}.Normalized()
	assert.Equal(t, time.Second, s.MaxInterval)
}

func TestPollerBacksOff(t *testing.T) {
	p := New(Settings{Interval: time.Millisecond, MaxInterval: 4 * time.Millisecond})
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	p.Reset()
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
