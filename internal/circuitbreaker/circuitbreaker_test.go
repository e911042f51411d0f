package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errServer = errors.New("502")
	errClient = errors.New("404")
)

func TestBreaker_TripsOnConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("api")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour

	var transitions []gobreaker.State
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	b := New[int](cfg)
	fail := func() (int, error) { return 0, errServer }

	_, err := b.Execute(fail)
	require.ErrorIs(t, err, errServer)
	_, err = b.Execute(fail)
	require.ErrorIs(t, err, errServer)

	assert.Equal(t, gobreaker.StateOpen, b.State())
	_, err = b.Execute(func() (int, error) { return 1, nil })
	assert.True(t, IsOpen(err))
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	cfg := DefaultConfig("api")
	cfg.ConsecutiveFailures = 1
	cfg.IsFailure = func(err error) bool { return errors.Is(err, errServer) }

	b := New[string](cfg)
	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (string, error) { return "", errClient })
		require.ErrorIs(t, err, errClient)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, "api", b.Name())
}
