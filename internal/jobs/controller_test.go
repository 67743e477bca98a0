package jobs

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartRunsTaskRepeatedly(t *testing.T) {
	c := NewController(zerolog.Nop())
	var runs int32

	require.NoError(t, c.Register("tick", func() error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, 5*time.Millisecond))

	c.Start("tick")
	time.Sleep(30 * time.Millisecond)
	c.Stop("tick")

	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2))
}

func TestController_TaskErrorDoesNotStopTheLoop(t *testing.T) {
	c := NewController(zerolog.Nop())
	var runs int32

	require.NoError(t, c.Register("flaky", func() error {
		atomic.AddInt32(&runs, 1)
		return errors.New("boom")
	}, 5*time.Millisecond))

	c.Start("flaky")
	time.Sleep(30 * time.Millisecond)
	c.Stop("flaky")

	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2))

	status := c.Status()
	assert.False(t, status["flaky"].Running)
	assert.Greater(t, status["flaky"].ErrorCount, int64(0))
}

func TestController_StartAlreadyRunningIsNoOp(t *testing.T) {
	c := NewController(zerolog.Nop())
	require.NoError(t, c.Register("job", func() error { return nil }, time.Second))

	c.Start("job")
	c.Start("job") // must not spawn a second goroutine or panic

	status := c.Status()
	assert.True(t, status["job"].Running)
	c.Stop("job")
}

func TestController_StopAlreadyStoppedIsNoOp(t *testing.T) {
	c := NewController(zerolog.Nop())
	require.NoError(t, c.Register("job", func() error { return nil }, time.Second))

	c.Stop("job") // never started
	status := c.Status()
	assert.False(t, status["job"].Running)
}

func TestController_RemoveMissingJobIsNoOp(t *testing.T) {
	c := NewController(zerolog.Nop())
	c.Remove("does-not-exist")
}

func TestController_RegisterDuplicateWhileRunningFails(t *testing.T) {
	c := NewController(zerolog.Nop())
	require.NoError(t, c.Register("job", func() error { return nil }, time.Second))
	c.Start("job")

	err := c.Register("job", func() error { return nil }, time.Second)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	c.Stop("job")
}

func TestController_StopInterruptsWaitImmediately(t *testing.T) {
	c := NewController(zerolog.Nop())
	require.NoError(t, c.Register("slow", func() error { return nil }, time.Hour))

	c.Start("slow")
	start := time.Now()
	c.Stop("slow")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
}
