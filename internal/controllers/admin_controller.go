package controllers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/utils"
)

type AdminController struct {
    DB *gorm.DB
}

type userResponse struct {
    ID          uint   `json:"id"`
    UserID      string `json:"user_id"`
    FullName    string `json:"full_name"`
    Email       string `json:"email"`
    Role        string `json:"role"`
    Kelas       string `json:"kelas"`
    Jurusan     string `json:"jurusan"`
    LoginLocked bool   `json:"login_locked"`
    Active      bool   `json:"active"`
}

func toUserResponse(u models.User) userResponse {
    return userResponse{
        ID:          u.ID,
        UserID:      u.UserID,
        FullName:    u.FullName,
        Email:       u.Email,
        Role:        u.Role,
        Kelas:       u.Kelas,
        Jurusan:     u.Jurusan,
        LoginLocked: u.LoginLocked,
        Active:      u.Active,
    }
}

// ListUsers supports q (name/email), role, kelas filters plus pagination.
func (a *AdminController) ListUsers(c *gin.Context) {
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

    base := a.DB.Model(&models.User{})
    if q := strings.TrimSpace(c.Query("q")); q != "" {
        like := "%" + q + "%"
        base = base.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
    }
    if role := strings.TrimSpace(c.Query("role")); role != "" {
        base = base.Where("role = ?", role)
    }
    if kelas := strings.TrimSpace(c.Query("kelas")); kelas != "" {
        base = base.Where("kelas = ?", kelas)
    }

    var total int64
    if err := base.Count(&total).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    var users []models.User
    err := base.Order("kelas ASC, full_name ASC").
        Offset((page - 1) * limit).Limit(limit).
        Find(&users).Error
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    out := make([]userResponse, 0, len(users))
    for _, u := range users {
        out = append(out, toUserResponse(u))
    }
    c.JSON(http.StatusOK, gin.H{"data": out, "meta": gin.H{"total": total, "limit": limit, "page": page}})
}

func (a *AdminController) GetUser(c *gin.Context) {
    user, ok := a.find(c)
    if !ok {
        return
    }
    c.JSON(http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
    FullName *string `json:"full_name"`
    Email    *string `json:"email"`
    Password *string `json:"password"`
    Role     *string `json:"role"`
    Kelas    *string `json:"kelas"`
    Jurusan  *string `json:"jurusan"`
    Active   *bool   `json:"active"`
}

func (a *AdminController) UpdateUser(c *gin.Context) {
    user, ok := a.find(c)
    if !ok {
        return
    }
    var req updateUserRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    updates := map[string]interface{}{}
    if req.FullName != nil {
        updates["full_name"] = *req.FullName
    }
    if req.Email != nil {
        updates["email"] = *req.Email
    }
    if req.Password != nil && *req.Password != "" {
        hashed, err := utils.HashPassword(*req.Password)
        if err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
            return
        }
        updates["password"] = hashed
    }
    if req.Role != nil {
        if !IsValidRole(*req.Role) {
            c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
            return
        }
        updates["role"] = *req.Role
    }
    if req.Kelas != nil {
        updates["kelas"] = *req.Kelas
    }
    if req.Jurusan != nil {
        updates["jurusan"] = *req.Jurusan
    }
    if req.Active != nil {
        updates["active"] = *req.Active
    }
    if len(updates) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
        return
    }
    if err := a.DB.Model(&user).Updates(updates).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, toUserResponse(user))
}

func (a *AdminController) DeleteUser(c *gin.Context) {
    user, ok := a.find(c)
    if !ok {
        return
    }
    if user.Role == "admin" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete admin user"})
        return
    }
    if err := a.DB.Delete(&user).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (a *AdminController) find(c *gin.Context) (models.User, bool) {
    var user models.User
    id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
    if err != nil || id == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
        return user, false
    }
    if err := a.DB.First(&user, uint(id)).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
        } else {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        }
        return user, false
    }
    return user, true
}
