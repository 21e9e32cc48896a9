package controllers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/zaqqye/ujian_backend_v1/internal/exam"
    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/utils"
)

// ExitCodeController issues and redeems the single-use codes that let a
// siswa close the locked exam client. Redemption ends the exam session the
// same way an explicit logout does.
type ExitCodeController struct {
    DB  *gorm.DB
    Svc *exam.Service
}

type generateExitCodeRequest struct {
    UserID   *uint `json:"user_id"`  // optional: bind the code to one siswa
    CourseID *uint `json:"ujian_id"` // optional: close this course's work status on redeem
    Length   int   `json:"length"`
}

func (ec *ExitCodeController) Generate(c *gin.Context) {
    uVal, _ := c.Get("user")
    issuer := uVal.(models.User)

    var req generateExitCodeRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    length := req.Length
    if length <= 0 {
        length = 6
    }
    code, err := utils.GenerateCode(length)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate code"})
        return
    }

    if req.UserID != nil {
        var count int64
        if err := ec.DB.Model(&models.User{}).
            Where("id = ? AND role = ?", *req.UserID, "siswa").
            Count(&count).Error; err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
            return
        }
        if count == 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
            return
        }
    }

    rec := models.ExitCode{
        IssuedByRef: issuer.ID,
        UserIDRef:   req.UserID,
        CourseIDRef: req.CourseID,
        Code:        code,
    }
    if err := ec.DB.Create(&rec).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "code collision, retry"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, gin.H{
        "id":         rec.ID,
        "code":       rec.Code,
        "user_id":    rec.UserIDRef,
        "ujian_id":   rec.CourseIDRef,
        "created_at": rec.CreatedAt,
    })
}

func (ec *ExitCodeController) List(c *gin.Context) {
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

    base := ec.DB.Model(&models.ExitCode{})
    // Default shows only redeemable codes.
    switch strings.ToLower(c.DefaultQuery("used", "false")) {
    case "true", "1":
        base = base.Where("used_at IS NOT NULL")
    case "all":
    default:
        base = base.Where("used_at IS NULL")
    }
    if v := strings.TrimSpace(c.Query("user_id")); v != "" {
        if id, err := strconv.Atoi(v); err == nil && id > 0 {
            base = base.Where("user_id_ref = ?", id)
        } else {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
            return
        }
    }

    var total int64
    if err := base.Count(&total).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    var items []models.ExitCode
    if err := base.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&items).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    out := make([]gin.H, 0, len(items))
    for _, e := range items {
        out = append(out, gin.H{
            "id":         e.ID,
            "code":       e.Code,
            "user_id":    e.UserIDRef,
            "ujian_id":   e.CourseIDRef,
            "issued_by":  e.IssuedByRef,
            "used_at":    e.UsedAt,
            "used_by":    e.UsedByRef,
            "created_at": e.CreatedAt,
        })
    }
    c.JSON(http.StatusOK, gin.H{"data": out, "meta": gin.H{"total": total, "limit": limit, "page": page}})
}

// Revoke marks a still-unused code as used so it can never be redeemed.
func (ec *ExitCodeController) Revoke(c *gin.Context) {
    id, err := strconv.Atoi(c.Param("id"))
    if err != nil || id <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
        return
    }
    var rec models.ExitCode
    if err := ec.DB.First(&rec, id).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "exit code not found"})
        return
    }
    if rec.UsedAt == nil {
        now := time.Now().UTC()
        if err := ec.DB.Model(&rec).Update("used_at", &now).Error; err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
            return
        }
    }
    c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}

type consumeExitCodeRequest struct {
    Code string `json:"code" binding:"required"`
}

// Consume redeems a code for the authenticated siswa. The row is locked so
// two devices racing on the same code cannot both succeed; the loser gets
// 409. A successful redeem ends the exam session like a logout.
func (ec *ExitCodeController) Consume(c *gin.Context) {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var req consumeExitCodeRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var rec models.ExitCode
    now := time.Now().UTC()
    err := ec.DB.Transaction(func(tx *gorm.DB) error {
        err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
            Where("code = ? AND used_at IS NULL", strings.TrimSpace(req.Code)).
            Where("user_id_ref IS NULL OR user_id_ref = ?", user.ID).
            First(&rec).Error
        if err != nil {
            return err
        }
        return tx.Model(&rec).Updates(map[string]interface{}{
            "used_at":     &now,
            "used_by_ref": user.ID,
        }).Error
    })
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusConflict, gin.H{"error": "code not found or already used"})
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    if err := ec.Svc.Logout(user.ID, rec.CourseIDRef); err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "consumed"})
}
