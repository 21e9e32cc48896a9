package exam

import (
    "errors"
    "strconv"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/zaqqye/ujian_backend_v1/internal/ws"
)

// Store interfaces consumed by the service. The gorm-backed types above
// satisfy them; tests substitute in-memory fakes.
type SessionAPI interface {
    SetStatus(userID uint, status string) error
    IsOnline(userID uint) (bool, *time.Time, error)
    LoginAllowed(userID uint) (bool, error)
}

type AttemptAPI interface {
    NextAttempt(userID, courseID uint) (int, error)
    RecordAnswer(userID, courseID, questionID uint, attempt int, answer string, durationSeconds *int) error
    DeleteTrail(userID, courseID uint) error
}

type TimerAPI interface {
    AddSeconds(userID, courseID uint, delta int) error
    Delete(userID, courseID uint) error
}

type WorkAPI interface {
    SetIdle(userID, courseID uint) error
    WorkingUserIDs(courseID uint) ([]uint, error)
}

type Broadcaster interface {
    Broadcast(kind string, evt ws.Event)
}

// Service orchestrates the session, attempt, timer and work-status stores
// for the exam lifecycle operations, and pushes state changes to the
// monitoring dashboards. Stores are mutated sequentially, best-effort; there
// is no cross-store transaction.
type Service struct {
    sessions SessionAPI
    attempts AttemptAPI
    timers   TimerAPI
    work     WorkAPI
    dir      Directory
    bus      Broadcaster
    submits  *keyedMutex
    log      zerolog.Logger
}

func NewService(sessions SessionAPI, attempts AttemptAPI, timers TimerAPI, work WorkAPI, dir Directory, bus Broadcaster, log zerolog.Logger) *Service {
    return &Service{
        sessions: sessions,
        attempts: attempts,
        timers:   timers,
        work:     work,
        dir:      dir,
        bus:      bus,
        submits:  newKeyedMutex(),
        log:      log,
    }
}

// BeginSession enforces the login gates for a siswa: the admin lock first,
// then single-device exclusivity. On success the session goes online.
func (s *Service) BeginSession(userID uint, loginLocked bool) error {
    if loginLocked {
        return ErrAccountLocked
    }
    allowed, err := s.sessions.LoginAllowed(userID)
    if err != nil {
        return err
    }
    if !allowed {
        return ErrAlreadyActive
    }
    return s.sessions.SetStatus(userID, SessionOnline)
}

// Logout flips the session offline, reverts the work status when a course is
// given, and tells the dashboards.
func (s *Service) Logout(userID uint, courseID *uint) error {
    err := s.sessions.SetStatus(userID, SessionOffline)
    if courseID != nil {
        if werr := s.work.SetIdle(userID, *courseID); werr != nil {
            s.log.Error().Err(werr).Uint("user_id", userID).Msg("logout: work status revert failed")
            err = errors.Join(err, werr)
        }
    }
    s.bus.Broadcast(ws.EventUnlock, ws.Event{UserID: userID})
    return err
}

// ResetExam clears the pair back to a clean slate: autosave trail gone,
// timer row deleted immediately (no grace delay), status idle, session
// offline. Steps run best-effort; a failed step is logged and the rest still
// run.
func (s *Service) ResetExam(userID, courseID uint) error {
    var errs []error
    if err := s.attempts.DeleteTrail(userID, courseID); err != nil {
        s.log.Error().Err(err).Uint("user_id", userID).Msg("reset: trail delete failed")
        errs = append(errs, err)
    }
    if err := s.timers.Delete(userID, courseID); err != nil {
        s.log.Error().Err(err).Uint("user_id", userID).Msg("reset: timer delete failed")
        errs = append(errs, err)
    }
    if err := s.work.SetIdle(userID, courseID); err != nil {
        s.log.Error().Err(err).Uint("user_id", userID).Msg("reset: work status revert failed")
        errs = append(errs, err)
    }
    if err := s.sessions.SetStatus(userID, SessionOffline); err != nil {
        s.log.Error().Err(err).Uint("user_id", userID).Msg("reset: session offline failed")
        errs = append(errs, err)
    }
    s.bus.Broadcast(ws.EventUnlock, ws.Event{UserID: userID})
    return errors.Join(errs...)
}

// BulkReport is the structured partial-failure report of a bulk operation.
// The operation as a whole still succeeds even when members failed.
type BulkReport struct {
    Total     int           `json:"total"`
    Succeeded int           `json:"succeeded"`
    Failed    []BulkFailure `json:"failed,omitempty"`
}

type BulkFailure struct {
    UserID uint   `json:"user_id"`
    Error  string `json:"error"`
}

func (s *Service) resetMany(userIDs []uint, courseID uint) *BulkReport {
    report := &BulkReport{Total: len(userIDs)}
    for _, id := range userIDs {
        if err := s.ResetExam(id, courseID); err != nil {
            s.log.Error().Err(err).Uint("user_id", id).Msg("bulk reset: member failed")
            report.Failed = append(report.Failed, BulkFailure{UserID: id, Error: err.Error()})
            continue
        }
        report.Succeeded++
    }
    return report
}

// ResetByClass resets every siswa of kelas. Members are independent: one
// failure never aborts the rest.
func (s *Service) ResetByClass(kelas string, courseID uint) (*BulkReport, error) {
    ids, err := s.dir.SiswaIDsByKelas(kelas)
    if err != nil {
        return nil, err
    }
    return s.resetMany(ids, courseID), nil
}

// ResetAllWorking resets everyone currently marked working on the course.
func (s *Service) ResetAllWorking(courseID uint) (*BulkReport, error) {
    ids, err := s.work.WorkingUserIDs(courseID)
    if err != nil {
        return nil, err
    }
    return s.resetMany(ids, courseID), nil
}

// Lock bars the user from logging in. Orthogonal to the session flag: an
// active session stays online until logout or the staleness sweep.
func (s *Service) Lock(userID uint) error {
    if err := s.dir.SetLoginLocked(userID, true); err != nil {
        return err
    }
    s.bus.Broadcast(ws.EventLock, ws.Event{UserID: userID})
    return nil
}

// Unlock lifts the login bar.
func (s *Service) Unlock(userID uint) error {
    if err := s.dir.SetLoginLocked(userID, false); err != nil {
        return err
    }
    s.bus.Broadcast(ws.EventUnlockAccount, ws.Event{UserID: userID})
    return nil
}

// TimerTarget picks the recipients of a time grant: one user, one class, or
// every siswa.
type TimerTarget struct {
    UserID *uint
    Kelas  string
    All    bool
}

func (s *Service) resolveTarget(target TimerTarget) ([]uint, error) {
    switch {
    case target.UserID != nil:
        return []uint{*target.UserID}, nil
    case target.All:
        return s.dir.SiswaIDsAll()
    case target.Kelas != "":
        return s.dir.SiswaIDsByKelas(target.Kelas)
    }
    return nil, ErrValidation
}

// AddTimer grants extra seconds to every resolved member. Per-member
// failures are reported, not fatal, and exactly one timer-updated event is
// broadcast regardless of target size.
func (s *Service) AddTimer(target TimerTarget, courseID uint, seconds int) (*BulkReport, error) {
    if seconds <= 0 {
        return nil, ErrValidation
    }
    ids, err := s.resolveTarget(target)
    if err != nil {
        return nil, err
    }
    report := &BulkReport{Total: len(ids)}
    for _, id := range ids {
        if err := s.timers.AddSeconds(id, courseID, seconds); err != nil {
            s.log.Error().Err(err).Uint("user_id", id).Msg("add timer: member failed")
            report.Failed = append(report.Failed, BulkFailure{UserID: id, Error: err.Error()})
            continue
        }
        report.Succeeded++
    }
    s.bus.Broadcast(ws.EventTimerUpdated, ws.Event{CourseID: courseID})
    return report, nil
}

// AnswerSubmission is one raw answer entry of a submission batch. QuestionID
// arrives as string or number on the wire.
type AnswerSubmission struct {
    QuestionID string
    Answer     string
}

// SubmitResult reports what a submission batch did.
type SubmitResult struct {
    Attempt         int  `json:"attempt"`
    Saved           int  `json:"saved"`
    Skipped         int  `json:"skipped"`
    DurationSeconds *int `json:"duration_seconds"`
}

// Submit versions a batch of answers into the next attempt for the pair.
// The attempt number is computed once and shared by every row; entries with
// an unparseable question id or an empty normalized answer are skipped. The
// whole read-compute-write span holds the pair lock so concurrent batches
// cannot reuse a number.
func (s *Service) Submit(userID, courseID uint, answers []AnswerSubmission, remainingSeconds *int) (*SubmitResult, error) {
    unlock := s.submits.Lock(pairKey{UserID: userID, CourseID: courseID})
    defer unlock()

    minutes, err := s.dir.CourseDurationMinutes(courseID)
    if err != nil {
        return nil, err
    }
    duration := workDuration(minutes, remainingSeconds)

    attempt, err := s.attempts.NextAttempt(userID, courseID)
    if err != nil {
        return nil, err
    }

    result := &SubmitResult{Attempt: attempt, DurationSeconds: duration}
    for _, entry := range answers {
        questionID, answer, ok := normalizeAnswer(entry)
        if !ok {
            result.Skipped++
            continue
        }
        if err := s.attempts.RecordAnswer(userID, courseID, questionID, attempt, answer, duration); err != nil {
            s.log.Error().Err(err).
                Uint("user_id", userID).
                Uint("question_id", questionID).
                Msg("submit: answer not recorded")
            result.Skipped++
            continue
        }
        result.Saved++
    }
    return result, nil
}

// workDuration derives how long the siswa worked: configured duration minus
// the client-reported remaining time. Nil when either side is missing.
func workDuration(courseMinutes, remainingSeconds *int) *int {
    if courseMinutes == nil || remainingSeconds == nil {
        return nil
    }
    d := *courseMinutes*60 - *remainingSeconds
    return &d
}

// normalizeAnswer validates one entry: the question id must parse and the
// trimmed answer must be non-empty. Answers are stored uppercased.
func normalizeAnswer(entry AnswerSubmission) (uint, string, bool) {
    id, err := strconv.ParseUint(strings.TrimSpace(entry.QuestionID), 10, 32)
    if err != nil || id == 0 {
        return 0, "", false
    }
    answer := strings.ToUpper(strings.TrimSpace(entry.Answer))
    if answer == "" {
        return 0, "", false
    }
    return uint(id), answer, true
}
