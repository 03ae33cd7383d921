package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/internal/metrics"
)

type fakePurger struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakePurger) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

func TestRunOnce(t *testing.T) {
	p := &fakePurger{n: 7}
	s := NewScheduler(p, 30, "0 0 3 * * *")
	now := time.Date(2026, 3, 31, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	before := testutil.ToFloat64(metrics.AccessLogsPurged)
	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC), p.cutoff)
	assert.Equal(t, before+7, testutil.ToFloat64(metrics.AccessLogsPurged))
}

func TestRunOnceError(t *testing.T) {
	s := NewScheduler(&fakePurger{err: errors.New("db gone")}, 0, "")
	_, err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db gone")
	assert.Equal(t, 90*24*time.Hour, s.keep)
}

func TestRunRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakePurger{}, 1, "not a cron line")
	assert.Error(t, s.Run(context.Background()))
}

func TestRunStopsWithContext(t *testing.T) {
	s := NewScheduler(&fakePurger{}, 1, "0 0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
