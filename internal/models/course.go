package models

import (
    "time"
)

// Course carries the exam configuration consumed by the session subsystem:
// duration in minutes, scheduled start time and the access token siswa must
// present when the course requires one.
type Course struct {
    ID              uint   `gorm:"primaryKey"`
    Name            string `gorm:"uniqueIndex"`
    Kelas           string `gorm:"index"`
    DurationMinutes int
    StartTime       *time.Time
    MaxAttempts     int
    ExamToken       string
    TokenRequired   bool
    Active          bool
    CreatedAt       time.Time
    UpdatedAt       time.Time
}
