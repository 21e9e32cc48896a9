package exam

import (
    "errors"

    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// Directory reads the roster/course collaborators the service needs and
// writes the login_locked flag. Kept narrow so the service can be exercised
// against an in-memory fake.
type Directory interface {
    SiswaIDsByKelas(kelas string) ([]uint, error)
    SiswaIDsAll() ([]uint, error)
    SetLoginLocked(userID uint, locked bool) error
    CourseDurationMinutes(courseID uint) (*int, error)
}

// GormDirectory is the store-backed Directory.
type GormDirectory struct {
    db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
    return &GormDirectory{db: db}
}

func (d *GormDirectory) SiswaIDsByKelas(kelas string) ([]uint, error) {
    var ids []uint
    err := d.db.Model(&models.User{}).
        Where("role = ? AND kelas = ?", "siswa", kelas).
        Pluck("id", &ids).Error
    return ids, err
}

func (d *GormDirectory) SiswaIDsAll() ([]uint, error) {
    var ids []uint
    err := d.db.Model(&models.User{}).
        Where("role = ?", "siswa").
        Pluck("id", &ids).Error
    return ids, err
}

func (d *GormDirectory) SetLoginLocked(userID uint, locked bool) error {
    res := d.db.Model(&models.User{}).
        Where("id = ?", userID).
        Update("login_locked", locked)
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrNotFound
    }
    return nil
}

func (d *GormDirectory) CourseDurationMinutes(courseID uint) (*int, error) {
    var course models.Course
    err := d.db.First(&course, courseID).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, nil
        }
        return nil, err
    }
    if course.DurationMinutes <= 0 {
        return nil, nil
    }
    minutes := course.DurationMinutes
    return &minutes, nil
}
