package controllers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// KelasController manages the class reference list backing the admin UI
// pickers. Rosters keep the name as a plain attribute.
type KelasController struct {
    DB *gorm.DB
}

type createKelasRequest struct {
    Name    string `json:"name" binding:"required"`
    Jurusan string `json:"jurusan"`
}

type updateKelasRequest struct {
    Name    *string `json:"name"`
    Jurusan *string `json:"jurusan"`
}

func (kc *KelasController) ListKelas(c *gin.Context) {
    limit := 50
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

    base := kc.DB.Model(&models.Kelas{})
    if q := strings.TrimSpace(c.Query("q")); q != "" {
        like := "%" + q + "%"
        base = base.Where("name ILIKE ? OR jurusan ILIKE ?", like, like)
    }

    var total int64
    if err := base.Count(&total).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    var rows []models.Kelas
    if err := base.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": rows, "meta": gin.H{"total": total, "limit": limit, "page": page}})
}

func (kc *KelasController) CreateKelas(c *gin.Context) {
    var req createKelasRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    row := models.Kelas{Name: strings.TrimSpace(req.Name), Jurusan: req.Jurusan}
    if err := kc.DB.Create(&row).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "kelas already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, row)
}

func (kc *KelasController) UpdateKelas(c *gin.Context) {
    row, ok := kc.find(c)
    if !ok {
        return
    }
    var req updateKelasRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    updates := map[string]interface{}{}
    if req.Name != nil {
        updates["name"] = strings.TrimSpace(*req.Name)
    }
    if req.Jurusan != nil {
        updates["jurusan"] = *req.Jurusan
    }
    if len(updates) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
        return
    }
    if err := kc.DB.Model(&row).Updates(updates).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "kelas already exists"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, row)
}

func (kc *KelasController) DeleteKelas(c *gin.Context) {
    row, ok := kc.find(c)
    if !ok {
        return
    }
    if err := kc.DB.Delete(&row).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (kc *KelasController) find(c *gin.Context) (models.Kelas, bool) {
    var row models.Kelas
    id, err := strconv.ParseUint(c.Param("id"), 10, 32)
    if err != nil || id == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
        return row, false
    }
    if err := kc.DB.First(&row, uint(id)).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "kelas not found"})
        } else {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        }
        return row, false
    }
    return row, true
}
