package controllers

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/zaqqye/ujian_backend_v1/internal/exam"
    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// ExamController serves the siswa-facing exam session endpoints: work
// status, timer reconciliation and answer submission.
type ExamController struct {
    Svc             *exam.Service
    Timers          *exam.TimerStore
    Work            *exam.WorkStatusTracker
    Attempts        *exam.AttemptLedger
    TimerClearDelay time.Duration
}

func currentUser(c *gin.Context) models.User {
    uVal, _ := c.Get("user")
    return uVal.(models.User)
}

func courseIDQuery(c *gin.Context) (uint, bool) {
    raw := strings.TrimSpace(c.Query("ujian_id"))
    id, err := strconv.ParseUint(raw, 10, 32)
    if err != nil || id == 0 {
        return 0, false
    }
    return uint(id), true
}

type setStatusRequest struct {
    CourseID uint   `json:"ujian_id" binding:"required"`
    Status   string `json:"status" binding:"required"`
}

// SetStatus records which exam the siswa is inside. Replaces any previous
// status row for the user regardless of course.
func (e *ExamController) SetStatus(c *gin.Context) {
    user := currentUser(c)
    var req setStatusRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := e.Work.SetStatus(user.ID, req.CourseID, req.Status); err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

type submitAnswerEntry struct {
    QuestionID FlexibleString `json:"soal_id"`
    Answer     string         `json:"jawaban"`
}

type submitRequest struct {
    CourseID         uint                `json:"ujian_id" binding:"required"`
    RemainingSeconds *int                `json:"sisa_waktu"`
    Answers          []submitAnswerEntry `json:"jawaban" binding:"required"`
}

// Submit versions the answer batch into the next attempt for the pair.
func (e *ExamController) Submit(c *gin.Context) {
    user := currentUser(c)
    var req submitRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    answers := make([]exam.AnswerSubmission, 0, len(req.Answers))
    for _, entry := range req.Answers {
        answers = append(answers, exam.AnswerSubmission{
            QuestionID: entry.QuestionID.String(),
            Answer:     entry.Answer,
        })
    }

    result, err := e.Svc.Submit(user.ID, req.CourseID, answers, req.RemainingSeconds)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, result)
}

type trailRequest struct {
    CourseID   uint           `json:"ujian_id" binding:"required"`
    QuestionID FlexibleString `json:"soal_id" binding:"required"`
    Answer     string         `json:"jawaban"`
}

// SaveTrail autosaves one answer while the siswa is still working.
func (e *ExamController) SaveTrail(c *gin.Context) {
    user := currentUser(c)
    var req trailRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    questionID, err := strconv.ParseUint(req.QuestionID.String(), 10, 32)
    if err != nil || questionID == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid soal_id"})
        return
    }
    if err := e.Attempts.SaveTrail(user.ID, req.CourseID, uint(questionID), req.Answer); err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "saved"})
}

// LatestAnswers returns the answers of the most recent attempt. An empty
// list means no attempt exists yet.
func (e *ExamController) LatestAnswers(c *gin.Context) {
    user := currentUser(c)
    courseID, ok := courseIDQuery(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ujian_id"})
        return
    }
    answers, err := e.Attempts.LatestAttemptAnswers(user.ID, courseID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": answers})
}

// ReadTimer returns the server-authoritative decayed remaining time; null
// when the exam has not started.
func (e *ExamController) ReadTimer(c *gin.Context) {
    user := currentUser(c)
    courseID, ok := courseIDQuery(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ujian_id"})
        return
    }
    remaining, err := e.Timers.ReadRemaining(user.ID, courseID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"sisa_waktu": remaining})
}

type writeTimerRequest struct {
    CourseID         uint `json:"ujian_id" binding:"required"`
    RemainingSeconds *int `json:"sisa_waktu" binding:"required"`
}

// WriteTimer stores the client-reported remaining time, resetting the decay
// baseline.
func (e *ExamController) WriteTimer(c *gin.Context) {
    user := currentUser(c)
    var req writeTimerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if *req.RemainingSeconds < 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "sisa_waktu must not be negative"})
        return
    }
    if err := e.Timers.WriteRemaining(user.ID, req.CourseID, *req.RemainingSeconds); err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "timer updated"})
}

// ClearTimer schedules the timer row's deletion after the grace delay. The
// response returns immediately; a client re-reading within the window still
// sees the old value.
func (e *ExamController) ClearTimer(c *gin.Context) {
    user := currentUser(c)
    courseID, ok := courseIDQuery(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ujian_id"})
        return
    }
    e.Timers.ClearAfterDelay(user.ID, courseID, e.TimerClearDelay)
    c.JSON(http.StatusOK, gin.H{"message": "timer clear scheduled"})
}
