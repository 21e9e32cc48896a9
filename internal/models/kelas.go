package models

import "time"

// Kelas is the reference list of class names used across users and ujian
// configuration. Users store the name as a plain attribute; this table only
// backs the admin picker.
type Kelas struct {
    ID        uint   `gorm:"primaryKey"`
    Name      string `gorm:"uniqueIndex"`
    Jurusan   string
    CreatedAt time.Time
    UpdatedAt time.Time
}
