package models

import "time"

// UserSession is the single online/offline flag per user. Exactly one row per
// user; rows are only ever upserted, never deleted.
type UserSession struct {
    ID         uint      `gorm:"primaryKey"`
    UserIDRef  uint      `gorm:"uniqueIndex"`
    Status     string    `gorm:"size:16;index"`
    LastUpdate time.Time `gorm:"index"`
}
