package exam

import (
    "errors"
    "fmt"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/zaqqye/ujian_backend_v1/internal/ws"
)

// In-memory fakes for the store interfaces.

type fakeSessions struct {
    status map[uint]string
    errOn  map[uint]error
}

func newFakeSessions() *fakeSessions {
    return &fakeSessions{status: map[uint]string{}, errOn: map[uint]error{}}
}

func (f *fakeSessions) SetStatus(userID uint, status string) error {
    if err := f.errOn[userID]; err != nil {
        return err
    }
    f.status[userID] = status
    return nil
}

func (f *fakeSessions) IsOnline(userID uint) (bool, *time.Time, error) {
    return f.status[userID] == SessionOnline, nil, nil
}

func (f *fakeSessions) LoginAllowed(userID uint) (bool, error) {
    online, _, err := f.IsOnline(userID)
    return !online, err
}

type recordedAnswer struct {
    QuestionID uint
    Attempt    int
    Answer     string
    Duration   *int
}

type fakeAttempts struct {
    max           map[pairKey]int
    answers       []recordedAnswer
    trailsDeleted []pairKey
}

func newFakeAttempts() *fakeAttempts {
    return &fakeAttempts{max: map[pairKey]int{}}
}

func (f *fakeAttempts) NextAttempt(userID, courseID uint) (int, error) {
    return f.max[pairKey{UserID: userID, CourseID: courseID}] + 1, nil
}

func (f *fakeAttempts) RecordAnswer(userID, courseID, questionID uint, attempt int, answer string, durationSeconds *int) error {
    key := pairKey{UserID: userID, CourseID: courseID}
    if attempt > f.max[key] {
        f.max[key] = attempt
    }
    f.answers = append(f.answers, recordedAnswer{
        QuestionID: questionID,
        Attempt:    attempt,
        Answer:     answer,
        Duration:   durationSeconds,
    })
    return nil
}

func (f *fakeAttempts) DeleteTrail(userID, courseID uint) error {
    f.trailsDeleted = append(f.trailsDeleted, pairKey{UserID: userID, CourseID: courseID})
    return nil
}

type fakeTimers struct {
    added   map[pairKey]int
    deleted []pairKey
    errOn   map[uint]error
}

func newFakeTimers() *fakeTimers {
    return &fakeTimers{added: map[pairKey]int{}, errOn: map[uint]error{}}
}

func (f *fakeTimers) AddSeconds(userID, courseID uint, delta int) error {
    if err := f.errOn[userID]; err != nil {
        return err
    }
    f.added[pairKey{UserID: userID, CourseID: courseID}] += delta
    return nil
}

func (f *fakeTimers) Delete(userID, courseID uint) error {
    f.deleted = append(f.deleted, pairKey{UserID: userID, CourseID: courseID})
    return nil
}

type fakeWork struct {
    idled   []pairKey
    working map[uint][]uint // courseID -> userIDs
}

func newFakeWork() *fakeWork {
    return &fakeWork{working: map[uint][]uint{}}
}

func (f *fakeWork) SetIdle(userID, courseID uint) error {
    f.idled = append(f.idled, pairKey{UserID: userID, CourseID: courseID})
    return nil
}

func (f *fakeWork) WorkingUserIDs(courseID uint) ([]uint, error) {
    return f.working[courseID], nil
}

type fakeDirectory struct {
    byKelas map[string][]uint
    all     []uint
    locked  map[uint]bool
    minutes map[uint]int
}

func newFakeDirectory() *fakeDirectory {
    return &fakeDirectory{
        byKelas: map[string][]uint{},
        locked:  map[uint]bool{},
        minutes: map[uint]int{},
    }
}

func (f *fakeDirectory) SiswaIDsByKelas(kelas string) ([]uint, error) {
    return f.byKelas[kelas], nil
}

func (f *fakeDirectory) SiswaIDsAll() ([]uint, error) {
    return f.all, nil
}

func (f *fakeDirectory) SetLoginLocked(userID uint, locked bool) error {
    if _, ok := f.locked[userID]; !ok {
        return ErrNotFound
    }
    f.locked[userID] = locked
    return nil
}

func (f *fakeDirectory) CourseDurationMinutes(courseID uint) (*int, error) {
    m, ok := f.minutes[courseID]
    if !ok {
        return nil, nil
    }
    return &m, nil
}

type fakeBus struct {
    events []ws.Event
}

func (f *fakeBus) Broadcast(kind string, evt ws.Event) {
    evt.Type = kind
    f.events = append(f.events, evt)
}

func (f *fakeBus) kinds() []string {
    out := make([]string, 0, len(f.events))
    for _, e := range f.events {
        out = append(out, e.Type)
    }
    return out
}

type serviceFixture struct {
    svc      *Service
    sessions *fakeSessions
    attempts *fakeAttempts
    timers   *fakeTimers
    work     *fakeWork
    dir      *fakeDirectory
    bus      *fakeBus
}

func newServiceFixture() *serviceFixture {
    f := &serviceFixture{
        sessions: newFakeSessions(),
        attempts: newFakeAttempts(),
        timers:   newFakeTimers(),
        work:     newFakeWork(),
        dir:      newFakeDirectory(),
        bus:      &fakeBus{},
    }
    f.svc = NewService(f.sessions, f.attempts, f.timers, f.work, f.dir, f.bus, zerolog.Nop())
    return f
}

func TestBeginSessionGates(t *testing.T) {
    f := newServiceFixture()

    // Lock wins over everything and is a distinct error.
    err := f.svc.BeginSession(5, true)
    assert.ErrorIs(t, err, ErrAccountLocked)
    assert.NotErrorIs(t, err, ErrAlreadyActive)

    // First login goes online.
    require.NoError(t, f.svc.BeginSession(5, false))
    assert.Equal(t, SessionOnline, f.sessions.status[5])

    // Second login while online is rejected with the exclusivity error.
    err = f.svc.BeginSession(5, false)
    assert.ErrorIs(t, err, ErrAlreadyActive)

    // After logout the user may log in again.
    require.NoError(t, f.svc.Logout(5, nil))
    assert.NoError(t, f.svc.BeginSession(5, false))
}

func TestLogoutRevertsWorkStatusAndBroadcasts(t *testing.T) {
    f := newServiceFixture()
    courseID := uint(3)

    require.NoError(t, f.svc.Logout(7, &courseID))

    assert.Equal(t, SessionOffline, f.sessions.status[7])
    assert.Equal(t, []pairKey{{UserID: 7, CourseID: 3}}, f.work.idled)
    require.Len(t, f.bus.events, 1)
    assert.Equal(t, ws.EventUnlock, f.bus.events[0].Type)
    assert.Equal(t, uint(7), f.bus.events[0].UserID)
}

func TestResetExamClearsEverything(t *testing.T) {
    f := newServiceFixture()

    require.NoError(t, f.svc.ResetExam(7, 3))

    key := pairKey{UserID: 7, CourseID: 3}
    assert.Equal(t, []pairKey{key}, f.attempts.trailsDeleted)
    assert.Equal(t, []pairKey{key}, f.timers.deleted, "full reset deletes the timer immediately")
    assert.Equal(t, []pairKey{key}, f.work.idled)
    assert.Equal(t, SessionOffline, f.sessions.status[7])
    assert.Equal(t, []string{ws.EventUnlock}, f.bus.kinds())
}

func TestResetExamContinuesPastFailures(t *testing.T) {
    f := newServiceFixture()
    f.sessions.errOn[7] = errors.New("store down")

    err := f.svc.ResetExam(7, 3)

    assert.Error(t, err)
    // The earlier steps still ran and the unlock still went out.
    assert.Len(t, f.attempts.trailsDeleted, 1)
    assert.Len(t, f.timers.deleted, 1)
    assert.Equal(t, []string{ws.EventUnlock}, f.bus.kinds())
}

func TestResetByClassIsolatesMembers(t *testing.T) {
    f := newServiceFixture()
    f.dir.byKelas["XII-A"] = []uint{1, 2, 3}
    f.sessions.errOn[2] = errors.New("store down")

    report, err := f.svc.ResetByClass("XII-A", 9)

    require.NoError(t, err, "bulk reset reports success even with member failures")
    assert.Equal(t, 3, report.Total)
    assert.Equal(t, 2, report.Succeeded)
    require.Len(t, report.Failed, 1)
    assert.Equal(t, uint(2), report.Failed[0].UserID)
    // All three members were processed despite the middle failure.
    assert.Len(t, f.attempts.trailsDeleted, 3)
}

func TestResetAllWorking(t *testing.T) {
    f := newServiceFixture()
    f.work.working[9] = []uint{4, 5}

    report, err := f.svc.ResetAllWorking(9)

    require.NoError(t, err)
    assert.Equal(t, 2, report.Succeeded)
    assert.Equal(t, SessionOffline, f.sessions.status[4])
    assert.Equal(t, SessionOffline, f.sessions.status[5])
}

func TestLockUnlockBroadcastKinds(t *testing.T) {
    f := newServiceFixture()
    f.dir.locked[5] = false

    require.NoError(t, f.svc.Lock(5))
    assert.True(t, f.dir.locked[5])

    require.NoError(t, f.svc.Unlock(5))
    assert.False(t, f.dir.locked[5])

    assert.Equal(t, []string{ws.EventLock, ws.EventUnlockAccount}, f.bus.kinds())
}

func TestLockIsOrthogonalToSession(t *testing.T) {
    f := newServiceFixture()
    f.dir.locked[5] = false
    require.NoError(t, f.svc.BeginSession(5, false))

    require.NoError(t, f.svc.Lock(5))

    online, _, err := f.sessions.IsOnline(5)
    require.NoError(t, err)
    assert.True(t, online, "locking does not touch the session flag")
}

func TestLockUnknownUser(t *testing.T) {
    f := newServiceFixture()
    err := f.svc.Lock(99)
    assert.ErrorIs(t, err, ErrNotFound)
    assert.Empty(t, f.bus.events, "no broadcast when the flag write failed")
}

func TestAddTimerSingleUserOneBroadcast(t *testing.T) {
    f := newServiceFixture()
    userID := uint(42)

    report, err := f.svc.AddTimer(TimerTarget{UserID: &userID}, 9, 30)

    require.NoError(t, err)
    assert.Equal(t, 1, report.Succeeded)
    assert.Equal(t, 30, f.timers.added[pairKey{UserID: 42, CourseID: 9}])
    assert.Equal(t, []string{ws.EventTimerUpdated}, f.bus.kinds())
}

func TestAddTimerClassSingleBroadcast(t *testing.T) {
    f := newServiceFixture()
    f.dir.byKelas["XI-B"] = []uint{10, 11, 12}
    f.timers.errOn[11] = errors.New("store down")

    report, err := f.svc.AddTimer(TimerTarget{Kelas: "XI-B"}, 9, 120)

    require.NoError(t, err)
    assert.Equal(t, 3, report.Total)
    assert.Equal(t, 2, report.Succeeded)
    require.Len(t, report.Failed, 1)
    assert.Equal(t, uint(11), report.Failed[0].UserID)
    assert.Equal(t, []string{ws.EventTimerUpdated}, f.bus.kinds(),
        "exactly one broadcast regardless of target size")
}

func TestAddTimerValidation(t *testing.T) {
    f := newServiceFixture()

    _, err := f.svc.AddTimer(TimerTarget{}, 9, 30)
    assert.ErrorIs(t, err, ErrValidation, "empty target")

    userID := uint(1)
    _, err = f.svc.AddTimer(TimerTarget{UserID: &userID}, 9, 0)
    assert.ErrorIs(t, err, ErrValidation, "non-positive grant")
}

func TestSubmitFirstAttempt(t *testing.T) {
    f := newServiceFixture()
    f.dir.minutes[3] = 30
    remaining := 120

    result, err := f.svc.Submit(7, 3, []AnswerSubmission{
        {QuestionID: "1", Answer: "b"},
        {QuestionID: "2", Answer: ""},
    }, &remaining)

    require.NoError(t, err)
    assert.Equal(t, 1, result.Attempt)
    assert.Equal(t, 1, result.Saved)
    assert.Equal(t, 1, result.Skipped, "empty answer is skipped, not fatal")
    require.Len(t, f.attempts.answers, 1)
    rec := f.attempts.answers[0]
    assert.Equal(t, uint(1), rec.QuestionID)
    assert.Equal(t, "B", rec.Answer, "answers are normalized to uppercase")
    assert.Equal(t, 1, rec.Attempt)
    require.NotNil(t, rec.Duration)
    assert.Equal(t, 1680, *rec.Duration, "30min course minus 120s remaining")
}

func TestSubmitAttemptNumbersIncrease(t *testing.T) {
    f := newServiceFixture()
    f.dir.minutes[3] = 30

    for want := 1; want <= 4; want++ {
        result, err := f.svc.Submit(7, 3, []AnswerSubmission{
            {QuestionID: "1", Answer: fmt.Sprintf("answer %d", want)},
        }, nil)
        require.NoError(t, err)
        assert.Equal(t, want, result.Attempt)
    }
}

func TestSubmitBatchSharesAttemptNumber(t *testing.T) {
    f := newServiceFixture()

    _, err := f.svc.Submit(7, 3, []AnswerSubmission{
        {QuestionID: "1", Answer: "a"},
        {QuestionID: "2", Answer: "c"},
        {QuestionID: "3", Answer: "d"},
    }, nil)

    require.NoError(t, err)
    require.Len(t, f.attempts.answers, 3)
    for _, rec := range f.attempts.answers {
        assert.Equal(t, 1, rec.Attempt)
    }
}

func TestSubmitDurationMissingPieces(t *testing.T) {
    f := newServiceFixture()
    remaining := 120

    // No course configuration: duration is nil.
    result, err := f.svc.Submit(7, 99, []AnswerSubmission{{QuestionID: "1", Answer: "a"}}, &remaining)
    require.NoError(t, err)
    assert.Nil(t, result.DurationSeconds)

    // No client value: duration is nil.
    f.dir.minutes[3] = 30
    result, err = f.svc.Submit(7, 3, []AnswerSubmission{{QuestionID: "1", Answer: "a"}}, nil)
    require.NoError(t, err)
    assert.Nil(t, result.DurationSeconds)
}

func TestSubmitSkipsUnparseableQuestionIDs(t *testing.T) {
    f := newServiceFixture()

    result, err := f.svc.Submit(7, 3, []AnswerSubmission{
        {QuestionID: "abc", Answer: "a"},
        {QuestionID: "", Answer: "a"},
        {QuestionID: "0", Answer: "a"},
        {QuestionID: " 12 ", Answer: " a "},
    }, nil)

    require.NoError(t, err)
    assert.Equal(t, 1, result.Saved)
    assert.Equal(t, 3, result.Skipped)
    require.Len(t, f.attempts.answers, 1)
    assert.Equal(t, uint(12), f.attempts.answers[0].QuestionID)
    assert.Equal(t, "A", f.attempts.answers[0].Answer)
}

func TestWorkDuration(t *testing.T) {
    minutes := 30
    remaining := 120

    assert.Nil(t, workDuration(nil, &remaining))
    assert.Nil(t, workDuration(&minutes, nil))

    d := workDuration(&minutes, &remaining)
    require.NotNil(t, d)
    assert.Equal(t, 1680, *d)
}
