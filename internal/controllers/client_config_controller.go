package controllers

import (
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/zaqqye/ujian_backend_v1/internal/config"
)

// ClientConfigController serves the bootstrap document the exam client reads
// on startup: the minimum accepted app version and feature flags.
type ClientConfigController struct {
    Cfg *config.Config
}

func (cc *ClientConfigController) Get(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "min_app_version": cc.Cfg.MinAppVersion,
        "flags": gin.H{
            "showExitCode":  true,
            "autosaveTrail": true,
        },
        "schema_version": 1,
    })
}
