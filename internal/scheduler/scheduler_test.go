package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/example/tee-time-sniper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestReleaseCron(t *testing.T) {
	assert.Equal(t, "0 0 19 * * *", ReleaseCron(19, 0))
	assert.Equal(t, "0 30 7 * * *", ReleaseCron(7, 30))
}

func TestPreReleaseCron(t *testing.T) {
	tests := []struct {
		hour, minute int
		lead         time.Duration
		want         string
	}{
		{19, 0, time.Minute, "0 59 18 * * *"},
		{19, 0, 90 * time.Second, "30 58 18 * * *"},
		{19, 0, 0, "0 0 19 * * *"},
		{0, 0, time.Second, "59 59 23 * * *"},
		{0, 5, 10 * time.Minute, "0 55 23 * * *"},
		{19, 0, 1500 * time.Millisecond, "59 59 18 * * *"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PreReleaseCron(tt.hour, tt.minute, tt.lead), "%02d:%02d lead %s", tt.hour, tt.minute, tt.lead)
	}
}

func TestOnceRejectsBadExpressions(t *testing.T) {
	s, err := New(time.UTC, logger.Nop())
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	noop := func(context.Context) {}
	assert.Error(t, s.Once("short", "0 19 *", noop))
	assert.Error(t, s.Once("long", "0 0 0 19 * * * *", noop))
	assert.Error(t, s.Once("garbage", "a b c d e f", noop))

	require.NoError(t, s.Once("ok", "0 19 * * *", noop))
	assert.Error(t, s.Once("ok", "0 19 * * *", noop), "duplicate name")
}

func TestNewRequiresLocation(t *testing.T) {
	_, err := New(nil, logger.Nop())
	assert.Error(t, err)
}

func TestNextRunInLocation(t *testing.T) {
	loc := newYork(t)
	s, err := New(loc, logger.Nop())
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	noop := func(context.Context) {}
	require.NoError(t, s.Once("pre-release", PreReleaseCron(19, 0, time.Minute), noop))
	require.NoError(t, s.Once("release", ReleaseCron(19, 0), noop))
	s.Start(context.Background())

	var pre, rel time.Time
	require.Eventually(t, func() bool {
		pre, _ = s.NextRun("pre-release")
		rel, _ = s.NextRun("release")
		return !pre.IsZero() && !rel.IsZero()
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 18, pre.Hour())
	assert.Equal(t, 59, pre.Minute())
	assert.Equal(t, 19, rel.Hour())
	assert.Equal(t, 0, rel.Minute())
	assert.True(t, rel.After(time.Now()))

	_, err = s.NextRun("missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestOnceFiresAtMostOnce(t *testing.T) {
	s, err := New(time.UTC, logger.Nop())
	require.NoError(t, err)

	var runs int32
	require.NoError(t, s.Once("every-second", "* * * * * *", func(ctx context.Context) {
		assert.NoError(t, ctx.Err())
		atomic.AddInt32(&runs, 1)
	}))
	s.Start(context.Background())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(1500 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&runs))
	require.NoError(t, s.Shutdown())
}

func TestShutdownCancelsRunningJob(t *testing.T) {
	s, err := New(time.UTC, logger.Nop())
	require.NoError(t, err)

	started := make(chan struct{})
	stopped := make(chan error, 1)
	require.NoError(t, s.Once("blocking", "* * * * * *", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
	}))
	s.Start(context.Background())

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}
	require.NoError(t, s.Shutdown())
	assert.ErrorIs(t, <-stopped, context.Canceled)
}

func TestJobPanicIsContained(t *testing.T) {
	s, err := New(time.UTC, logger.Nop())
	require.NoError(t, err)

	var fired int32
	require.NoError(t, s.Once("boom", "* * * * * *", func(context.Context) {
		atomic.StoreInt32(&fired, 1)
		panic("boom")
	}))
	s.Start(context.Background())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.NoError(t, s.Shutdown())
}
