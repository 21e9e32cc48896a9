package exam

import (
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// AttemptLedger owns attempt numbering and answer persistence per
// (user, course) pair. Numbering is max+1 at the moment a submission batch
// begins; callers serialize batches per pair so numbers stay monotonic.
type AttemptLedger struct {
    db *gorm.DB
}

func NewAttemptLedger(db *gorm.DB) *AttemptLedger {
    return &AttemptLedger{db: db}
}

// AttemptAnswer is one (question, answer) row of an attempt.
type AttemptAnswer struct {
    QuestionID uint   `json:"soal_id"`
    Answer     string `json:"jawaban"`
}

// NextAttempt returns 1 + max(attempt) for the pair, 1 if none exist.
func (l *AttemptLedger) NextAttempt(userID, courseID uint) (int, error) {
    max, err := l.maxAttempt(userID, courseID)
    if err != nil {
        return 0, err
    }
    return max + 1, nil
}

func (l *AttemptLedger) maxAttempt(userID, courseID uint) (int, error) {
    var max int
    err := l.db.Model(&models.ExamAttempt{}).
        Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).
        Select("COALESCE(MAX(attempt), 0)").
        Scan(&max).Error
    return max, err
}

// RecordAnswer upserts one answer row. A conflict on the full composite key
// (duplicate double-submit) overwrites answer and duration only; the attempt
// number is part of the key and stays put.
func (l *AttemptLedger) RecordAnswer(userID, courseID, questionID uint, attempt int, answer string, durationSeconds *int) error {
    row := models.ExamAttempt{
        UserIDRef:       userID,
        CourseIDRef:     courseID,
        QuestionIDRef:   questionID,
        Attempt:         attempt,
        Answer:          answer,
        DurationSeconds: durationSeconds,
    }
    return l.db.Clauses(clause.OnConflict{
        Columns: []clause.Column{
            {Name: "user_id_ref"},
            {Name: "course_id_ref"},
            {Name: "question_id_ref"},
            {Name: "attempt"},
        },
        DoUpdates: clause.AssignmentColumns([]string{"answer", "duration_seconds"}),
    }).Create(&row).Error
}

// LatestAttemptAnswers returns all answers of the highest attempt for the
// pair. An empty slice means "no answer yet", not an error.
func (l *AttemptLedger) LatestAttemptAnswers(userID, courseID uint) ([]AttemptAnswer, error) {
    max, err := l.maxAttempt(userID, courseID)
    if err != nil {
        return nil, err
    }
    if max == 0 {
        return []AttemptAnswer{}, nil
    }
    var rows []models.ExamAttempt
    err = l.db.
        Where("user_id_ref = ? AND course_id_ref = ? AND attempt = ?", userID, courseID, max).
        Order("question_id_ref ASC").
        Find(&rows).Error
    if err != nil {
        return nil, err
    }
    answers := make([]AttemptAnswer, 0, len(rows))
    for _, row := range rows {
        answers = append(answers, AttemptAnswer{QuestionID: row.QuestionIDRef, Answer: row.Answer})
    }
    return answers, nil
}

// MaxAttemptAcrossClass returns the highest attempt any siswa of kelas has
// reached for the course. Used for cross-student progress reporting.
func (l *AttemptLedger) MaxAttemptAcrossClass(courseID uint, kelas string) (int, error) {
    var max int
    err := l.db.Table("exam_attempts AS a").
        Joins("JOIN users u ON u.id = a.user_id_ref").
        Where("a.course_id_ref = ? AND u.kelas = ? AND u.role = ?", courseID, kelas, "siswa").
        Select("COALESCE(MAX(a.attempt), 0)").
        Scan(&max).Error
    return max, err
}

// SaveTrail upserts the transient autosave row for one question.
func (l *AttemptLedger) SaveTrail(userID, courseID, questionID uint, answer string) error {
    row := models.AnswerTrail{
        UserIDRef:     userID,
        CourseIDRef:   courseID,
        QuestionIDRef: questionID,
        Answer:        answer,
    }
    return l.db.Clauses(clause.OnConflict{
        Columns: []clause.Column{
            {Name: "user_id_ref"},
            {Name: "course_id_ref"},
            {Name: "question_id_ref"},
        },
        DoUpdates: clause.AssignmentColumns([]string{"answer", "updated_at"}),
    }).Create(&row).Error
}

// TrailAnswers returns the current autosave rows for the pair.
func (l *AttemptLedger) TrailAnswers(userID, courseID uint) ([]AttemptAnswer, error) {
    var rows []models.AnswerTrail
    err := l.db.
        Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).
        Order("question_id_ref ASC").
        Find(&rows).Error
    if err != nil {
        return nil, err
    }
    answers := make([]AttemptAnswer, 0, len(rows))
    for _, row := range rows {
        answers = append(answers, AttemptAnswer{QuestionID: row.QuestionIDRef, Answer: row.Answer})
    }
    return answers, nil
}

// DeleteTrail wipes the autosave rows for the pair. The durable attempt
// ledger is untouched.
func (l *AttemptLedger) DeleteTrail(userID, courseID uint) error {
    return l.db.
        Where("user_id_ref = ? AND course_id_ref = ?", userID, courseID).
        Delete(&models.AnswerTrail{}).Error
}
