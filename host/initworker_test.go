package host

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitWorkerRunsReadyOnceWindowAppears(t *testing.T) {
	as := assert.New(t)

	var polls, readies atomic.Int32
	ready := make(chan struct{})

	w := NewInitWorker(
		func() bool { return polls.Add(1) >= 3 },
		func() {
			readies.Add(1)
			close(ready)
		},
	)
	w.Interval = time.Millisecond
	w.Start()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("ready never ran")
	}
	w.Stop()

	as.EqualValues(1, readies.Load())
	as.GreaterOrEqual(polls.Load(), int32(3))
}

func TestInitWorkerStopBeforeWindowSkipsReady(t *testing.T) {
	as := assert.New(t)

	var readies atomic.Int32
	w := NewInitWorker(
		func() bool { return false },
		func() { readies.Add(1) },
	)
	w.Interval = time.Millisecond
	w.Start()

	time.Sleep(10 * time.Millisecond)
	w.Stop()

	as.EqualValues(0, readies.Load())
}

func TestInitWorkerStopTwiceIsSafe(t *testing.T) {
	w := NewInitWorker(func() bool { return true }, func() {})
	w.Interval = time.Millisecond
	w.Start()
	w.Stop()
	w.Stop()
}
