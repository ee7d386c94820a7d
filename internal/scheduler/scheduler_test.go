package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediatelyThenOnInterval(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(10*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) >= 3 {
			cancel()
		}
		return nil
	}, nil)

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestSchedulerSurvivesFailedRuns(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(10*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) >= 2 {
			cancel()
		}
		return errors.New("gate abort")
	}, nil)

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.GreaterOrEqual(t, runs.Load(), int32(2))
}
