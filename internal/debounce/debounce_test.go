package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wait = time.Second

func TestSchedule_RunsAfterDelay(t *testing.T) {
	d := New(context.Background())
	defer d.Stop()

	start := time.Now()
	var ran atomic.Bool
	task := d.Schedule(20*time.Millisecond, func(ctx context.Context, gen uint64) {
		ran.Store(true)
	})

	select {
	case <-task.Done():
	case <-time.After(wait):
		t.Fatal("task did not finish")
	}
	assert.True(t, ran.Load())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.False(t, task.Canceled())
}

func TestSchedule_OnlyLastRuns(t *testing.T) {
	d := New(context.Background())
	defer d.Stop()

	var mu sync.Mutex
	var ran []uint64
	fn := func(ctx context.Context, gen uint64) {
		mu.Lock()
		defer mu.Unlock()
		ran = append(ran, gen)
	}

	var tasks []*Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, d.Schedule(30*time.Millisecond, fn))
	}
	last := tasks[len(tasks)-1]

	select {
	case <-last.Done():
	case <-time.After(wait):
		t.Fatal("last task did not finish")
	}

	for _, task := range tasks[:len(tasks)-1] {
		assert.True(t, task.Canceled())
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{5}, ran)
	assert.Equal(t, uint64(5), d.Generation())
}

func TestCancel(t *testing.T) {
	d := New(context.Background())
	defer d.Stop()

	var ran atomic.Bool
	task := d.Schedule(20*time.Millisecond, func(ctx context.Context, gen uint64) { ran.Store(true) })

	require.True(t, d.Cancel())
	<-task.Done()
	time.Sleep(40 * time.Millisecond)

	assert.False(t, ran.Load())
	assert.False(t, task.Cancel())
	assert.False(t, d.Cancel())
}

func TestCancel_RunningTaskIsNotInterrupted(t *testing.T) {
	d := New(context.Background())
	defer d.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr atomic.Value
	first := d.Schedule(0, func(ctx context.Context, gen uint64) {
		close(started)
		<-release
		ctxErr.Store(ctx.Err() == nil)
	})
	<-started

	second := d.Schedule(time.Hour, func(ctx context.Context, gen uint64) {})
	assert.False(t, first.Cancel())
	close(release)
	<-first.Done()

	assert.Equal(t, true, ctxErr.Load())
	assert.True(t, second.Cancel())
}

func TestStop(t *testing.T) {
	d := New(context.Background())

	task := d.Schedule(time.Hour, func(ctx context.Context, gen uint64) {})
	d.Stop()
	<-task.Done()
	assert.True(t, task.Canceled())

	after := d.Schedule(0, func(ctx context.Context, gen uint64) { t.Error("ran after stop") })
	<-after.Done()
	assert.True(t, after.Canceled())
}
