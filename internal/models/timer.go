package models

import "time"

// TimerState holds the countdown snapshot per (user, course). The stored
// value is never decremented in place; readers decay it against the wall
// clock since LastUpdate and every write resets that baseline.
type TimerState struct {
    ID               uint `gorm:"primaryKey"`
    UserIDRef        uint `gorm:"uniqueIndex:uniq_timer_pair"`
    CourseIDRef      uint `gorm:"uniqueIndex:uniq_timer_pair"`
    RemainingSeconds int
    // AddedSeconds is a monotonic audit counter of granted extra time.
    AddedSeconds int
    LastUpdate   time.Time
}

// RemainingAt returns the decayed remaining time at now, clamped at zero.
func (t TimerState) RemainingAt(now time.Time) int {
    elapsed := int(now.Sub(t.LastUpdate).Seconds())
    if elapsed < 0 {
        elapsed = 0
    }
    remaining := t.RemainingSeconds - elapsed
    if remaining < 0 {
        remaining = 0
    }
    return remaining
}
