package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateTooFewTrendsIsFatal(t *testing.T) {
	t.Parallel()

	g := NewGate(5, 0.5)
	warnings, err := g.Check(4, 1.0)
	require.Nil(t, warnings)

	var gateErr *GateError
	require.True(t, errors.As(err, &gateErr))
	require.Equal(t, 4, gateErr.Total)
	require.Equal(t, 5, gateErr.Min)
	require.Equal(t, "quality gate: only 4 trends collected, minimum is 5", err.Error())
}

func TestGateLowFreshnessOnlyWarns(t *testing.T) {
	t.Parallel()

	g := NewGate(5, 0.5)
	warnings, err := g.Check(10, 0.3)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "freshness below threshold")
}

func TestGatePasses(t *testing.T) {
	t.Parallel()

	g := NewGate(5, 0.5)
	warnings, err := g.Check(5, 0.5)
	require.NoError(t, err)
	require.Empty(t, warnings)
}
