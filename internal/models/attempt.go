package models

import "time"

// ExamAttempt is one answered question inside a numbered attempt. The attempt
// number increases per (user, course); all rows of one submission batch share
// the same number. Conflicts on the composite key are resolved by overwrite.
type ExamAttempt struct {
    ID              uint `gorm:"primaryKey"`
    UserIDRef       uint `gorm:"uniqueIndex:uniq_attempt_answer"`
    CourseIDRef     uint `gorm:"uniqueIndex:uniq_attempt_answer"`
    QuestionIDRef   uint `gorm:"uniqueIndex:uniq_attempt_answer"`
    Attempt         int  `gorm:"uniqueIndex:uniq_attempt_answer"`
    Answer          string
    DurationSeconds *int
    CreatedAt       time.Time
}

// AnswerTrail is the transient autosave counterpart of ExamAttempt: the last
// answer a siswa typed for a question, overwritten in place and wiped by a
// full exam reset. The durable ledger above is never touched by a reset.
type AnswerTrail struct {
    ID            uint `gorm:"primaryKey"`
    UserIDRef     uint `gorm:"uniqueIndex:uniq_trail_answer"`
    CourseIDRef   uint `gorm:"uniqueIndex:uniq_trail_answer"`
    QuestionIDRef uint `gorm:"uniqueIndex:uniq_trail_answer"`
    Answer        string
    UpdatedAt     time.Time
}
