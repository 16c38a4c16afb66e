package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

func errDeviceLost() error {
	return vantageerr.New(vantageerr.DeviceLost, "surface lost")
}

func errNetwork() error {
	return vantageerr.New(vantageerr.NetworkError, "fetch timed out")
}

func waitForState(t *testing.T, s Scheduler, want State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, want, s.State())
}

func TestSchedulerTwoNoOpRendersAreNoOps(t *testing.T) {
	var renderCount int32
	s := NewScheduler(
		func(kind UpdateKind) (bool, error) { return true, nil },
		func() error {
			atomic.AddInt32(&renderCount, 1)
			return nil
		},
	)
	s.SetTargetFrameTime(2 * time.Millisecond)
	s.Run()
	defer s.Quit()

	s.Trigger(View)
	waitForState(t, s, Idle, time.Second)
	first := atomic.LoadInt32(&renderCount)
	assert.Equal(t, int32(1), first)

	// No further triggers: the ticker alone must not spuriously render again
	// since runFrameIfIdle only proceeds when the pending mask is non-empty.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, first, atomic.LoadInt32(&renderCount))
}

func TestSchedulerCoalescesByPriority(t *testing.T) {
	var mu sync.Mutex
	var order []UpdateKind

	release := make(chan struct{})
	var once sync.Once

	s := NewScheduler(
		func(kind UpdateKind) (bool, error) {
			mu.Lock()
			order = append(order, kind)
			mu.Unlock()
			if kind == View {
				once.Do(func() { <-release })
			}
			return true, nil
		},
		func() error { return nil },
	)
	s.SetTargetFrameTime(2 * time.Millisecond)
	s.Run()
	defer s.Quit()

	s.Trigger(View)
	time.Sleep(5 * time.Millisecond) // let the View update start and block
	s.Trigger(Data)
	s.Trigger(Config)
	close(release)

	waitForState(t, s, Idle, time.Second)
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 3)
	assert.Equal(t, View, order[0])
	assert.Equal(t, Config, order[1])
	assert.Equal(t, Data, order[2])
}

func TestSchedulerInvisibleUpdateSkipsRender(t *testing.T) {
	var renderCount int32
	s := NewScheduler(
		func(kind UpdateKind) (bool, error) { return false, nil },
		func() error {
			atomic.AddInt32(&renderCount, 1)
			return nil
		},
	)
	s.SetTargetFrameTime(2 * time.Millisecond)
	s.Run()
	defer s.Quit()

	s.Trigger(Data)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&renderCount))
}

func TestSchedulerFatalErrorEntersFailed(t *testing.T) {
	s := NewScheduler(
		func(kind UpdateKind) (bool, error) { return true, nil },
		func() error { return errDeviceLost() },
	)
	s.SetTargetFrameTime(2 * time.Millisecond)
	s.Run()
	defer s.Quit()

	s.Trigger(Data)
	waitForState(t, s, Failed, time.Second)
}

func TestSchedulerRecoverableErrorReturnsToIdle(t *testing.T) {
	s := NewScheduler(
		func(kind UpdateKind) (bool, error) { return false, errNetwork() },
		func() error { return nil },
	)
	s.SetTargetFrameTime(2 * time.Millisecond)
	s.Run()
	defer s.Quit()

	s.Trigger(Data)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Idle, s.State())
}
