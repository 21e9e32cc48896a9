package schedule

import (
    "sync/atomic"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
)

func newTestScheduler(t *testing.T) *Scheduler {
    t.Helper()
    s := New(zerolog.Nop())
    go s.Start()
    t.Cleanup(s.Stop)
    return s
}

func TestSchedulerFiresAfterDelay(t *testing.T) {
    s := newTestScheduler(t)

    fired := make(chan struct{})
    s.After(Key{UserID: 1, CourseID: 2, Kind: "timer-clear"}, 20*time.Millisecond, func() {
        close(fired)
    })

    select {
    case <-fired:
    case <-time.After(2 * time.Second):
        t.Fatal("task did not fire")
    }
}

func TestSchedulerReschedulingReplacesTask(t *testing.T) {
    s := newTestScheduler(t)
    key := Key{UserID: 1, CourseID: 2, Kind: "work-lapse"}

    var first, second atomic.Int32
    s.After(key, 30*time.Millisecond, func() { first.Add(1) })
    s.After(key, 30*time.Millisecond, func() { second.Add(1) })

    assert.Eventually(t, func() bool { return second.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
    assert.Equal(t, int32(0), first.Load(), "replaced task must not fire")
}

func TestSchedulerCancel(t *testing.T) {
    s := newTestScheduler(t)
    key := Key{UserID: 3, CourseID: 4, Kind: "timer-clear"}

    var fired atomic.Int32
    s.After(key, 50*time.Millisecond, func() { fired.Add(1) })
    s.Cancel(key)

    time.Sleep(200 * time.Millisecond)
    assert.Equal(t, int32(0), fired.Load())
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
    s := newTestScheduler(t)

    var a, b atomic.Int32
    s.After(Key{UserID: 1, CourseID: 1, Kind: "work-lapse"}, 20*time.Millisecond, func() { a.Add(1) })
    s.After(Key{UserID: 1, CourseID: 1, Kind: "timer-clear"}, 20*time.Millisecond, func() { b.Add(1) })

    assert.Eventually(t, func() bool {
        return a.Load() == 1 && b.Load() == 1
    }, 2*time.Second, 10*time.Millisecond, "same pair, different kinds: both fire")
}

func TestSchedulerSurvivesPanickingTask(t *testing.T) {
    s := newTestScheduler(t)

    s.After(Key{UserID: 9, CourseID: 9, Kind: "work-lapse"}, 10*time.Millisecond, func() {
        panic("boom")
    })

    fired := make(chan struct{})
    s.After(Key{UserID: 9, CourseID: 10, Kind: "work-lapse"}, 30*time.Millisecond, func() {
        close(fired)
    })

    select {
    case <-fired:
    case <-time.After(2 * time.Second):
        t.Fatal("scheduler stopped firing after a panicking task")
    }
}
