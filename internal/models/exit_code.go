package models

import "time"

// ExitCode is a single-use unlock code a pengawas or admin hands to a siswa
// so the locked exam client may be closed. Redeeming it ends the exam
// session server-side.
type ExitCode struct {
    ID          uint  `gorm:"primaryKey"`
    IssuedByRef uint  `gorm:"index"`
    UserIDRef   *uint `gorm:"index"` // target siswa; nil means any siswa may redeem
    CourseIDRef *uint
    Code        string     `gorm:"uniqueIndex"`
    UsedAt      *time.Time `gorm:"index"`
    UsedByRef   *uint
    CreatedAt   time.Time
}
