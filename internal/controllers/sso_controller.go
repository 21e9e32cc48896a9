package controllers

import (
    "fmt"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/golang-jwt/jwt/v5"

    "github.com/zaqqye/ujian_backend_v1/internal/config"
    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

// SSOController bridges into the external portal that hosts the actual exam
// content. Questions are never stored here; the client opens the portal with
// a short-lived token so the siswa lands logged in.
type SSOController struct {
    Cfg *config.Config
}

func (sc *SSOController) GeneratePortalSSO(c *gin.Context) {
    if sc.Cfg.PortalSSOSecret == "" || sc.Cfg.PortalSSOLoginURL == "" {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "portal sso not configured"})
        return
    }
    uVal, ok := c.Get("user")
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    user := uVal.(models.User)
    if user.Email == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "user has no email"})
        return
    }

    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub":   user.ID,
        "email": user.Email,
        "name":  user.FullName,
        "role":  user.Role,
        "kelas": user.Kelas,
        "iat":   now.Unix(),
        "exp":   now.Add(2 * time.Minute).Unix(),
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := token.SignedString([]byte(sc.Cfg.PortalSSOSecret))
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
        return
    }

    redirect := c.DefaultQuery("redirect", sc.Cfg.PortalSSOLoginURL)
    c.JSON(http.StatusOK, gin.H{
        "sso_url": fmt.Sprintf("%s?token=%s", redirect, signed),
        "token":   signed,
    })
}
