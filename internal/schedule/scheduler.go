package schedule

import (
    "context"
    "time"

    "github.com/jellydator/ttlcache/v3"
    "github.com/rs/zerolog"
)

// Key identifies a pending one-shot task. Scheduling the same key again
// replaces the pending task, so a fresh operation supersedes an older timer
// for the same (user, course, kind) without touching other keys.
type Key struct {
    UserID   uint
    CourseID uint
    Kind     string
}

// Scheduler runs deferred one-shot tasks on top of a TTL cache: the task
// fires when its cache entry expires. Tasks are housekeeping, not critical
// path: failures are logged, never retried.
type Scheduler struct {
    tasks *ttlcache.Cache[Key, func()]
    log   zerolog.Logger
}

func New(log zerolog.Logger) *Scheduler {
    s := &Scheduler{
        tasks: ttlcache.New(
            ttlcache.WithDisableTouchOnHit[Key, func()](),
        ),
        log: log,
    }
    s.tasks.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[Key, func()]) {
        if reason != ttlcache.EvictionReasonExpired {
            return
        }
        run := item.Value()
        key := item.Key()
        go func() {
            defer func() {
                if r := recover(); r != nil {
                    s.log.Error().Interface("panic", r).
                        Uint("user_id", key.UserID).
                        Uint("course_id", key.CourseID).
                        Str("kind", key.Kind).
                        Msg("scheduled task panicked")
                }
            }()
            run()
        }()
    })
    return s
}

// Start blocks processing expirations; run it in its own goroutine.
func (s *Scheduler) Start() {
    s.tasks.Start()
}

func (s *Scheduler) Stop() {
    s.tasks.Stop()
}

// After schedules run to fire once after delay. A pending task with the same
// key is replaced.
func (s *Scheduler) After(key Key, delay time.Duration, run func()) {
    s.tasks.Set(key, run, delay)
}

// Cancel drops a pending task. No-op if nothing is scheduled for key.
func (s *Scheduler) Cancel(key Key) {
    s.tasks.Delete(key)
}
