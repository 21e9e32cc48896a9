package exam

import (
    "errors"
    "strings"
    "time"

    "github.com/rs/zerolog"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/schedule"
)

const (
    // StatusWorkingPrefix marks an active exam status ("Mengerjakan <ujian>").
    StatusWorkingPrefix = "Mengerjakan"
    // StatusIdle is the fixed sentinel for a siswa not inside any exam.
    StatusIdle = "Tidak Mengerjakan Soal"

    taskWorkLapse = "work-lapse"

    // Auto-lapse is armed only when the course start time is this far in the
    // future at the moment the working status is set; the deferred check
    // fires lapseGrace after that start time.
    lapseArmMin = 1 * time.Minute
    lapseArmMax = 10 * time.Minute
    lapseGrace  = 10 * time.Minute
)

// IsWorking reports whether status marks an active exam session.
func IsWorking(status string) bool {
    return strings.HasPrefix(status, StatusWorkingPrefix)
}

// lapseDelay returns the delay until the deferred auto-lapse check for a
// course starting at start, and whether the check should be armed at all.
// The 1–10 minute window is exact: outside it no safety timer is scheduled.
func lapseDelay(start, now time.Time) (time.Duration, bool) {
    lead := start.Sub(now)
    if lead < lapseArmMin || lead > lapseArmMax {
        return 0, false
    }
    return lead + lapseGrace, true
}

// WorkStatusTracker owns the per-user working status. A siswa can only be
// inside one exam context at a time: at most one row per user, replaced
// whenever the status is set for a new course.
type WorkStatusTracker struct {
    db    *gorm.DB
    now   func() time.Time
    sched *schedule.Scheduler
    log   zerolog.Logger
}

func NewWorkStatusTracker(db *gorm.DB, sched *schedule.Scheduler, log zerolog.Logger) *WorkStatusTracker {
    return &WorkStatusTracker{db: db, now: time.Now, sched: sched, log: log}
}

// SetStatus replaces any existing row for userID with a fresh one for
// (userID, courseID, status). When the new status means "working" and the
// course window opens 1-10 minutes from now, a one-shot check is armed that
// reverts a still-working status 10 minutes past that start time.
func (w *WorkStatusTracker) SetStatus(userID, courseID uint, status string) error {
    now := w.now().UTC()
    row := models.WorkStatus{
        UserIDRef:   userID,
        CourseIDRef: courseID,
        Status:      status,
    }
    if IsWorking(status) {
        row.StartTime = &now
    } else {
        row.EndTime = &now
    }

    err := w.db.Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("user_id_ref = ?", userID).Delete(&models.WorkStatus{}).Error; err != nil {
            return err
        }
        return tx.Create(&row).Error
    })
    if err != nil {
        return err
    }

    if IsWorking(status) {
        w.armLapse(userID, courseID)
    }
    return nil
}

// SetIdle reverts the status for the pair to the idle sentinel.
func (w *WorkStatusTracker) SetIdle(userID, courseID uint) error {
    return w.SetStatus(userID, courseID, StatusIdle)
}

func (w *WorkStatusTracker) armLapse(userID, courseID uint) {
    var course models.Course
    if err := w.db.First(&course, courseID).Error; err != nil {
        if !errors.Is(err, gorm.ErrRecordNotFound) {
            w.log.Error().Err(err).Uint("course_id", courseID).Msg("work status: course lookup failed")
        }
        return
    }
    if course.StartTime == nil {
        return
    }
    delay, ok := lapseDelay(*course.StartTime, w.now())
    if !ok {
        return
    }
    key := schedule.Key{UserID: userID, CourseID: courseID, Kind: taskWorkLapse}
    w.sched.After(key, delay, func() {
        w.lapse(userID, courseID)
    })
}

// lapse re-checks state at fire time: it only reverts when the same
// (user, course) pair is still marked working, so an intervening explicit
// operation is never overwritten with stale state.
func (w *WorkStatusTracker) lapse(userID, courseID uint) {
    var row models.WorkStatus
    err := w.db.Where("user_id_ref = ?", userID).First(&row).Error
    if err != nil {
        if !errors.Is(err, gorm.ErrRecordNotFound) {
            w.log.Error().Err(err).Uint("user_id", userID).Msg("work status lapse check failed")
        }
        return
    }
    if row.CourseIDRef != courseID || !IsWorking(row.Status) {
        return
    }
    now := w.now().UTC()
    err = w.db.Model(&row).Updates(map[string]interface{}{
        "status":   StatusIdle,
        "end_time": &now,
    }).Error
    if err != nil {
        w.log.Error().Err(err).Uint("user_id", userID).Msg("work status lapse revert failed")
        return
    }
    w.log.Info().Uint("user_id", userID).Uint("course_id", courseID).Msg("reverted stale working status")
}

// StudentOverview is one roster row joined with session and work status.
type StudentOverview struct {
    UserID        uint       `json:"id"`
    FullName      string     `json:"full_name"`
    Kelas         string     `json:"kelas"`
    LoginLocked   bool       `json:"login_locked"`
    SessionStatus string     `json:"session_status"`
    LastUpdate    *time.Time `json:"last_update"`
    CourseID      *uint      `json:"course_id"`
    WorkStatus    string     `json:"work_status"`
}

// ListAll returns every siswa left-joined with session and work status,
// defaulting absent rows to offline and the idle sentinel.
func (w *WorkStatusTracker) ListAll() ([]StudentOverview, error) {
    var rows []StudentOverview
    err := w.db.Table("users AS u").
        Select("u.id AS user_id, u.full_name, u.kelas, u.login_locked, "+
            "COALESCE(s.status, ?) AS session_status, s.last_update, "+
            "ws.course_id_ref AS course_id, COALESCE(ws.status, ?) AS work_status",
            SessionOffline, StatusIdle).
        Joins("LEFT JOIN user_sessions s ON s.user_id_ref = u.id").
        Joins("LEFT JOIN work_statuses ws ON ws.user_id_ref = u.id").
        Where("u.role = ?", "siswa").
        Order("u.kelas ASC, u.full_name ASC").
        Scan(&rows).Error
    if err != nil {
        return nil, err
    }
    return rows, nil
}

// WorkingUserIDs returns every siswa currently marked working on courseID.
func (w *WorkStatusTracker) WorkingUserIDs(courseID uint) ([]uint, error) {
    var ids []uint
    err := w.db.Model(&models.WorkStatus{}).
        Where("course_id_ref = ? AND status LIKE ?", courseID, StatusWorkingPrefix+"%").
        Pluck("user_id_ref", &ids).Error
    return ids, err
}
