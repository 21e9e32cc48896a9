package controllers

import (
    "errors"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/zaqqye/ujian_backend_v1/internal/exam"
)

// statusFromErr maps the exam error taxonomy onto HTTP statuses.
func statusFromErr(c *gin.Context, err error) {
    switch {
    case errors.Is(err, exam.ErrValidation):
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    case errors.Is(err, exam.ErrNotFound):
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
    case errors.Is(err, exam.ErrAlreadyActive):
        c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
    case errors.Is(err, exam.ErrAccountLocked):
        c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
    default:
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    }
}
