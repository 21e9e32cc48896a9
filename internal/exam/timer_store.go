package exam

import (
    "errors"
    "time"

    "github.com/rs/zerolog"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/schedule"
)

const taskTimerClear = "timer-clear"

// TimerStore owns the countdown state per (user, course). Reads decay the
// stored snapshot against elapsed wall-clock time; writes reset the decay
// baseline. Read-modify-write sequences are serialized per pair.
type TimerStore struct {
    db    *gorm.DB
    now   func() time.Time
    keys  *keyedMutex
    sched *schedule.Scheduler
    log   zerolog.Logger
}

func NewTimerStore(db *gorm.DB, sched *schedule.Scheduler, log zerolog.Logger) *TimerStore {
    return &TimerStore{db: db, now: time.Now, keys: newKeyedMutex(), sched: sched, log: log}
}

// ReadRemaining returns the decayed remaining seconds, or nil when no row
// exists (exam not started).
func (t *TimerStore) ReadRemaining(userID, courseID uint) (*int, error) {
    var state models.TimerState
    err := t.db.Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).First(&state).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, nil
        }
        return nil, err
    }
    remaining := state.RemainingAt(t.now())
    return &remaining, nil
}

// WriteRemaining stores the client-reported remaining time and resets the
// decay baseline. The audit counter is untouched.
func (t *TimerStore) WriteRemaining(userID, courseID uint, seconds int) error {
    unlock := t.keys.Lock(pairKey{UserID: userID, CourseID: courseID})
    defer unlock()

    now := t.now().UTC()
    var state models.TimerState
    err := t.db.Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).First(&state).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        state = models.TimerState{
            UserIDRef:        userID,
            CourseIDRef:      courseID,
            RemainingSeconds: seconds,
            LastUpdate:       now,
        }
        return t.db.Create(&state).Error
    }
    if err != nil {
        return err
    }
    return t.db.Model(&state).Updates(map[string]interface{}{
        "remaining_seconds": seconds,
        "last_update":       now,
    }).Error
}

// AddSeconds grants delta extra seconds on top of the decayed remaining time
// (missing row behaves as base 0) and bumps the cumulative audit counter.
func (t *TimerStore) AddSeconds(userID, courseID uint, delta int) error {
    unlock := t.keys.Lock(pairKey{UserID: userID, CourseID: courseID})
    defer unlock()

    now := t.now().UTC()
    var state models.TimerState
    err := t.db.Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).First(&state).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        state = models.TimerState{
            UserIDRef:        userID,
            CourseIDRef:      courseID,
            RemainingSeconds: delta,
            AddedSeconds:     delta,
            LastUpdate:       now,
        }
        return t.db.Create(&state).Error
    }
    if err != nil {
        return err
    }
    return t.db.Model(&state).Updates(map[string]interface{}{
        "remaining_seconds": state.RemainingAt(now) + delta,
        "added_seconds":     state.AddedSeconds + delta,
        "last_update":       now,
    }).Error
}

// Delete removes the row immediately. Used by the full exam reset.
func (t *TimerStore) Delete(userID, courseID uint) error {
    return t.db.
        Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).
        Delete(&models.TimerState{}).Error
}

// ClearAfterDelay schedules the row's deletion after delay without blocking
// the caller. A client re-reading right after triggering the clear still
// sees the old value for the grace window; that is intended. At fire time
// the delete skips rows rewritten after the clear was requested, so a fresh
// write supersedes the pending clear.
func (t *TimerStore) ClearAfterDelay(userID, courseID uint, delay time.Duration) {
    requestedAt := t.now().UTC()
    key := schedule.Key{UserID: userID, CourseID: courseID, Kind: taskTimerClear}
    t.sched.After(key, delay, func() {
        err := t.db.
            Where("user_id_ref = ? AND course_id_ref = ? AND last_update <= ?", userID, courseID, requestedAt).
            Delete(&models.TimerState{}).Error
        if err != nil {
            t.log.Error().Err(err).
                Uint("user_id", userID).
                Uint("course_id", courseID).
                Msg("delayed timer clear failed")
        }
    })
}
