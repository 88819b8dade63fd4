package health

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acidtib/jiji/pkg/types"
)

type fakeProber struct {
	running map[string]bool
	err     map[string]error
}

func (f *fakeProber) IsRunning(ctx context.Context, containerID string) (bool, error) {
	if err, ok := f.err[containerID]; ok {
		return false, err
	}
	return f.running[containerID], nil
}

func TestSyncNotRunningGoesUnhealthy(t *testing.T) {
	prober := &fakeProber{running: map[string]bool{}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", HealthStatus: types.HealthHealthy, ConsecutiveFailures: 0},
	}
	changed := s.Sync(context.Background(), containers)
	require.Len(t, changed, 1)
	assert.Equal(t, types.HealthUnhealthy, changed[0].HealthStatus)
	assert.Equal(t, 1, changed[0].ConsecutiveFailures)
}

func TestSyncRunningNoPortGoesHealthy(t *testing.T) {
	prober := &fakeProber{running: map[string]bool{"c1": true}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", HealthPort: 0, HealthStatus: types.HealthDegraded, ConsecutiveFailures: 1},
	}
	changed := s.Sync(context.Background(), containers)
	require.Len(t, changed, 1)
	assert.Equal(t, types.HealthHealthy, changed[0].HealthStatus)
	assert.Equal(t, 0, changed[0].ConsecutiveFailures)
}

func TestSyncUnchangedRowOmitted(t *testing.T) {
	prober := &fakeProber{running: map[string]bool{"c1": true}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", HealthPort: 0, HealthStatus: types.HealthHealthy, ConsecutiveFailures: 0},
	}
	changed := s.Sync(context.Background(), containers)
	assert.Empty(t, changed)
}

func TestSyncProbeErrorLeavesRowUnchanged(t *testing.T) {
	prober := &fakeProber{err: map[string]error{"c1": errors.New("engine unreachable")}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", HealthStatus: types.HealthHealthy, ConsecutiveFailures: 0},
	}
	changed := s.Sync(context.Background(), containers)
	assert.Empty(t, changed)
}

func TestSyncHysteresisThreeFailuresUnhealthy(t *testing.T) {
	prober := &fakeProber{running: map[string]bool{"c1": true}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", PrivateIP: "127.0.0.1", HealthPort: 1, HealthStatus: types.HealthDegraded, ConsecutiveFailures: 2},
	}
	changed := s.Sync(context.Background(), containers)
	require.Len(t, changed, 1)
	assert.Equal(t, types.HealthUnhealthy, changed[0].HealthStatus)
	assert.Equal(t, 3, changed[0].ConsecutiveFailures)
}

func TestSyncHysteresisOneFailureDegraded(t *testing.T) {
	prober := &fakeProber{running: map[string]bool{"c1": true}}
	s := NewSyncer(prober, zerolog.Nop())

	containers := []types.Container{
		{ID: "c1", PrivateIP: "127.0.0.1", HealthPort: 1, HealthStatus: types.HealthHealthy, ConsecutiveFailures: 0},
	}
	changed := s.Sync(context.Background(), containers)
	require.Len(t, changed, 1)
	assert.Equal(t, types.HealthDegraded, changed[0].HealthStatus)
	assert.Equal(t, 1, changed[0].ConsecutiveFailures)
}

func TestParseHealthPort(t *testing.T) {
	cases := map[string]int{
		"":        0,
		"null":    0,
		"0":       0,
		"8080":    8080,
		"garbage": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseHealthPort(in), "input %q", in)
	}
}
