package database

import (
    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/config"
    "github.com/zaqqye/ujian_backend_v1/internal/models"
    "github.com/zaqqye/ujian_backend_v1/internal/utils"
)

func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
    var count int64
    if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
        return err
    }
    if count > 0 {
        return nil
    }

    hashed, err := utils.HashPassword(cfg.AdminPassword)
    if err != nil {
        return err
    }

    admin := models.User{
        UserID:   uuid.NewString(),
        FullName: cfg.AdminFullName,
        Email:    cfg.AdminEmail,
        Password: hashed,
        Role:     "admin",
        Active:   true,
    }
    if err := db.Create(&admin).Error; err != nil {
        return err
    }
    log.Info().Str("email", cfg.AdminEmail).Msg("seeded initial admin")
    return nil
}
