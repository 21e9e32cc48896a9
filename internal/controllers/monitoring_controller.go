package controllers

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/gin-gonic/gin"

    "github.com/zaqqye/ujian_backend_v1/internal/exam"
)

// MonitoringController serves the admin/pengawas dashboard: the student
// overview, class progress, and the lock/reset/timer commands.
type MonitoringController struct {
    Svc      *exam.Service
    Work     *exam.WorkStatusTracker
    Attempts *exam.AttemptLedger
}

// ListStudents returns every siswa with session and work status, defaults
// applied for students who never went online or started an exam.
func (mc *MonitoringController) ListStudents(c *gin.Context) {
    rows, err := mc.Work.ListAll()
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ClassProgress reports the highest attempt any siswa of the class reached.
func (mc *MonitoringController) ClassProgress(c *gin.Context) {
    courseID, ok := courseIDQuery(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ujian_id"})
        return
    }
    kelas := strings.TrimSpace(c.Query("kelas"))
    if kelas == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "kelas is required"})
        return
    }
    max, err := mc.Attempts.MaxAttemptAcrossClass(courseID, kelas)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ujian_id": courseID, "kelas": kelas, "max_attempt": max})
}

type resetRequest struct {
    UserID   uint `json:"user_id" binding:"required"`
    CourseID uint `json:"ujian_id" binding:"required"`
}

// ResetExam wipes the transient exam state of one siswa and forces the
// session offline.
func (mc *MonitoringController) ResetExam(c *gin.Context) {
    var req resetRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := mc.Svc.ResetExam(req.UserID, req.CourseID); err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "exam reset"})
}

type resetClassRequest struct {
    Kelas    string `json:"kelas" binding:"required"`
    CourseID uint   `json:"ujian_id" binding:"required"`
}

// ResetByClass resets every siswa of the class. Member failures are reported
// in the body, not as an HTTP error.
func (mc *MonitoringController) ResetByClass(c *gin.Context) {
    var req resetClassRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    report, err := mc.Svc.ResetByClass(req.Kelas, req.CourseID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "class reset", "report": report})
}

type resetWorkingRequest struct {
    CourseID uint `json:"ujian_id" binding:"required"`
}

// ResetAllWorking resets everyone currently marked working on the course.
func (mc *MonitoringController) ResetAllWorking(c *gin.Context) {
    var req resetWorkingRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    report, err := mc.Svc.ResetAllWorking(req.CourseID)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "working students reset", "report": report})
}

func userIDParam(c *gin.Context) (uint, bool) {
    id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
    if err != nil || id == 0 {
        return 0, false
    }
    return uint(id), true
}

// Lock bars a siswa from logging in. The current session, if any, stays
// online until logout or the staleness sweep.
func (mc *MonitoringController) Lock(c *gin.Context) {
    id, ok := userIDParam(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
        return
    }
    if err := mc.Svc.Lock(id); err != nil {
        statusFromErr(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "account locked"})
}

// Unlock lifts the login bar.
func (mc *MonitoringController) Unlock(c *gin.Context) {
    id, ok := userIDParam(c)
    if !ok {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
        return
    }
    if err := mc.Svc.Unlock(id); err != nil {
        statusFromErr(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "account unlocked"})
}

type addTimerRequest struct {
    UserID   *uint  `json:"user_id"`
    Kelas    string `json:"kelas"`
    All      bool   `json:"all"`
    CourseID uint   `json:"ujian_id" binding:"required"`
    Seconds  int    `json:"seconds" binding:"required"`
}

// AddTimer grants extra time to a user, a class, or every siswa. One
// timer-updated event is pushed regardless of target size.
func (mc *MonitoringController) AddTimer(c *gin.Context) {
    var req addTimerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    target := exam.TimerTarget{UserID: req.UserID, Kelas: req.Kelas, All: req.All}
    report, err := mc.Svc.AddTimer(target, req.CourseID, req.Seconds)
    if err != nil {
        statusFromErr(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "timer updated", "report": report})
}
