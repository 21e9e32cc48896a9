package models

import "time"

// WorkStatus marks which exam a siswa is currently inside. At most one row
// per user: the course is an attribute, not part of the key, so setting a
// status for a new course replaces the previous row entirely.
type WorkStatus struct {
    ID          uint `gorm:"primaryKey"`
    UserIDRef   uint `gorm:"uniqueIndex"`
    CourseIDRef uint `gorm:"index"`
    Status      string
    StartTime   *time.Time
    EndTime     *time.Time
    CreatedAt   time.Time
    UpdatedAt   time.Time
}
