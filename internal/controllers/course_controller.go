package controllers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/utils"
)

// CourseController manages the exam configuration rows: duration, start
// time, attempt cap and the optional access token.
type CourseController struct {
    DB *gorm.DB
}

type createCourseRequest struct {
    Name            string     `json:"name" binding:"required"`
    Kelas           string     `json:"kelas"`
    DurationMinutes int        `json:"duration_minutes" binding:"required"`
    StartTime       *time.Time `json:"start_time"`
    MaxAttempts     int        `json:"max_attempts"`
    TokenRequired   bool       `json:"token_required"`
    Active          *bool      `json:"active"`
}

type updateCourseRequest struct {
    Name            *string    `json:"name"`
    Kelas           *string    `json:"kelas"`
    DurationMinutes *int       `json:"duration_minutes"`
    StartTime       *time.Time `json:"start_time"`
    MaxAttempts     *int       `json:"max_attempts"`
    TokenRequired   *bool      `json:"token_required"`
    Active          *bool      `json:"active"`
}

func (cc *CourseController) ListCourses(c *gin.Context) {
    limit := 20
    page := 1
    if v := c.Query("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            limit = n
        }
    }
    if v := c.Query("page"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            page = n
        }
    }

    base := cc.DB.Model(&models.Course{})
    if q := strings.TrimSpace(c.Query("q")); q != "" {
        base = base.Where("name ILIKE ?", "%"+q+"%")
    }
    if kelas := strings.TrimSpace(c.Query("kelas")); kelas != "" {
        base = base.Where("kelas = ?", kelas)
    }

    var total int64
    if err := base.Count(&total).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    var courses []models.Course
    if err := base.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": courses, "meta": gin.H{"total": total, "limit": limit, "page": page}})
}

func (cc *CourseController) CreateCourse(c *gin.Context) {
    var req createCourseRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if req.DurationMinutes <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be positive"})
        return
    }

    active := true
    if req.Active != nil {
        active = *req.Active
    }
    course := models.Course{
        Name:            req.Name,
        Kelas:           req.Kelas,
        DurationMinutes: req.DurationMinutes,
        StartTime:       req.StartTime,
        MaxAttempts:     req.MaxAttempts,
        TokenRequired:   req.TokenRequired,
        Active:          active,
    }
    if req.TokenRequired {
        token, err := utils.GenerateCode(6)
        if err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate exam token"})
            return
        }
        course.ExamToken = token
    }

    if err := cc.DB.Create(&course).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, course)
}

func (cc *CourseController) GetCourse(c *gin.Context) {
    course, ok := cc.find(c)
    if !ok {
        return
    }
    c.JSON(http.StatusOK, course)
}

func (cc *CourseController) UpdateCourse(c *gin.Context) {
    course, ok := cc.find(c)
    if !ok {
        return
    }
    var req updateCourseRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    updates := map[string]interface{}{}
    if req.Name != nil {
        updates["name"] = *req.Name
    }
    if req.Kelas != nil {
        updates["kelas"] = *req.Kelas
    }
    if req.DurationMinutes != nil {
        if *req.DurationMinutes <= 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be positive"})
            return
        }
        updates["duration_minutes"] = *req.DurationMinutes
    }
    if req.StartTime != nil {
        updates["start_time"] = req.StartTime
    }
    if req.MaxAttempts != nil {
        updates["max_attempts"] = *req.MaxAttempts
    }
    if req.TokenRequired != nil {
        updates["token_required"] = *req.TokenRequired
    }
    if req.Active != nil {
        updates["active"] = *req.Active
    }
    if len(updates) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
        return
    }
    if err := cc.DB.Model(&course).Updates(updates).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, course)
}

// RegenerateToken rotates the exam access token.
func (cc *CourseController) RegenerateToken(c *gin.Context) {
    course, ok := cc.find(c)
    if !ok {
        return
    }
    token, err := utils.GenerateCode(6)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate exam token"})
        return
    }
    if err := cc.DB.Model(&course).Updates(map[string]interface{}{
        "exam_token":     token,
        "token_required": true,
    }).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ujian_id": course.ID, "exam_token": token})
}

func (cc *CourseController) DeleteCourse(c *gin.Context) {
    course, ok := cc.find(c)
    if !ok {
        return
    }
    if err := cc.DB.Delete(&course).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (cc *CourseController) find(c *gin.Context) (models.Course, bool) {
    var course models.Course
    id, err := strconv.ParseUint(c.Param("id"), 10, 32)
    if err != nil || id == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
        return course, false
    }
    if err := cc.DB.First(&course, uint(id)).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
        } else {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        }
        return course, false
    }
    return course, true
}
