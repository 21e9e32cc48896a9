package controllers

import (
    "net/http"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// AssignmentController moves siswa between classes in bulk. Membership is the
// kelas attribute on the user row; assigning to a class overwrites whatever
// class the siswa was in before.
type AssignmentController struct {
    DB *gorm.DB
}

type assignKelasRequest struct {
    UserIDs []uint `json:"user_ids" binding:"required"`
}

// AssignStudents puts the listed siswa into the class. Non-siswa ids and
// unknown ids are reported back, not fatal.
func (ac *AssignmentController) AssignStudents(c *gin.Context) {
    kelas, ok := ac.findKelas(c)
    if !ok {
        return
    }
    var req assignKelasRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if len(req.UserIDs) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids must not be empty"})
        return
    }

    res := ac.DB.Model(&models.User{}).
        Where("id IN ? AND role = ?", req.UserIDs, "siswa").
        Update("kelas", kelas.Name)
    if res.Error != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "message":  "assigned",
        "kelas":    kelas.Name,
        "assigned": res.RowsAffected,
        "skipped":  int64(len(req.UserIDs)) - res.RowsAffected,
    })
}

// UnassignStudents clears the class of the listed siswa, but only for those
// actually in this class.
func (ac *AssignmentController) UnassignStudents(c *gin.Context) {
    kelas, ok := ac.findKelas(c)
    if !ok {
        return
    }
    var req assignKelasRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if len(req.UserIDs) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids must not be empty"})
        return
    }

    res := ac.DB.Model(&models.User{}).
        Where("id IN ? AND role = ? AND kelas = ?", req.UserIDs, "siswa", kelas.Name).
        Update("kelas", "")
    if res.Error != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "unassigned", "unassigned": res.RowsAffected})
}

// ListMembers returns the siswa currently in the class.
func (ac *AssignmentController) ListMembers(c *gin.Context) {
    kelas, ok := ac.findKelas(c)
    if !ok {
        return
    }
    var users []models.User
    err := ac.DB.
        Where("role = ? AND kelas = ?", "siswa", kelas.Name).
        Order("full_name ASC").
        Find(&users).Error
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    out := make([]userResponse, 0, len(users))
    for _, u := range users {
        out = append(out, toUserResponse(u))
    }
    c.JSON(http.StatusOK, gin.H{"kelas": kelas.Name, "data": out, "meta": gin.H{"total": len(out)}})
}

func (ac *AssignmentController) findKelas(c *gin.Context) (models.Kelas, bool) {
    kc := KelasController{DB: ac.DB}
    return kc.find(c)
}
