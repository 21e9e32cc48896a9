package main

import (
    "context"
    "os"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog"

    "github.com/gin-gonic/gin"

    "github.com/zaqqye/ujian_backend_v1/internal/config"
    "github.com/zaqqye/ujian_backend_v1/internal/database"
    "github.com/zaqqye/ujian_backend_v1/internal/exam"
    "github.com/zaqqye/ujian_backend_v1/internal/routes"
    "github.com/zaqqye/ujian_backend_v1/internal/schedule"
    "github.com/zaqqye/ujian_backend_v1/internal/ws"
)

func main() {
    // Load .env (non-fatal if missing in production)
    _ = godotenv.Load()

    log := zerolog.New(os.Stderr).With().Timestamp().Logger()

    cfg := config.Load()

    db, err := database.Connect(cfg)
    if err != nil {
        log.Fatal().Err(err).Msg("database connection failed")
    }

    if err := database.Migrate(db); err != nil {
        log.Fatal().Err(err).Msg("database migration failed")
    }

    if err := database.SeedAdmin(db, cfg); err != nil {
        log.Fatal().Err(err).Msg("admin seed failed")
    }

    hub := ws.NewHub(log.With().Str("component", "hub").Logger())
    go hub.Run()

    sched := schedule.New(log.With().Str("component", "scheduler").Logger())
    go sched.Start()
    defer sched.Stop()

    sessions := exam.NewSessionRegistry(db, log.With().Str("component", "sessions").Logger())
    attempts := exam.NewAttemptLedger(db)
    timers := exam.NewTimerStore(db, sched, log.With().Str("component", "timers").Logger())
    work := exam.NewWorkStatusTracker(db, sched, log.With().Str("component", "work_status").Logger())
    dir := exam.NewGormDirectory(db)
    svc := exam.NewService(sessions, attempts, timers, work, dir, hub,
        log.With().Str("component", "exam_service").Logger())

    go sessions.RunSweeper(context.Background(), cfg.SessionSweepInterval, cfg.SessionStaleAfter)

    r := gin.Default()
    routes.Register(r, &routes.Deps{
        DB:       db,
        Cfg:      cfg,
        Hub:      hub,
        Svc:      svc,
        Timers:   timers,
        Work:     work,
        Attempts: attempts,
    })

    if err := r.Run(":" + cfg.Port); err != nil {
        log.Error().Err(err).Msg("server exited with error")
        os.Exit(1)
    }
}
