package routes

import (
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/zaqqye/ujian_backend_v1/internal/config"
    "github.com/zaqqye/ujian_backend_v1/internal/controllers"
    "github.com/zaqqye/ujian_backend_v1/internal/exam"
    "github.com/zaqqye/ujian_backend_v1/internal/middleware"
    "github.com/zaqqye/ujian_backend_v1/internal/ws"
)

// Deps carries the wired subsystem handles from main into the route table.
type Deps struct {
    DB       *gorm.DB
    Cfg      *config.Config
    Hub      *ws.Hub
    Svc      *exam.Service
    Timers   *exam.TimerStore
    Work     *exam.WorkStatusTracker
    Attempts *exam.AttemptLedger
}

func Register(r *gin.Engine, d *Deps) {
    accessTTL, err := time.ParseDuration(d.Cfg.AccessTokenTTLMinutes + "m")
    if err != nil || accessTTL == 0 {
        accessTTL = 15 * time.Minute
    }
    refreshDays, err := strconv.Atoi(d.Cfg.RefreshTokenTTLDays)
    if err != nil || refreshDays <= 0 {
        refreshDays = 30
    }
    refreshTTL := time.Duration(refreshDays) * 24 * time.Hour

    authCtrl := &controllers.AuthController{
        DB:            d.DB,
        Svc:           d.Svc,
        AccessSecret:  d.Cfg.JWTSecret,
        RefreshSecret: d.Cfg.RefreshJWTSecret,
        AccessTTL:     accessTTL,
        RefreshTTL:    refreshTTL,
        MinAppVersion: d.Cfg.MinAppVersion,
    }
    adminCtrl := &controllers.AdminController{DB: d.DB}
    courseCtrl := &controllers.CourseController{DB: d.DB}
    kelasCtrl := &controllers.KelasController{DB: d.DB}
    assignCtrl := &controllers.AssignmentController{DB: d.DB}
    exitCodeCtrl := &controllers.ExitCodeController{DB: d.DB, Svc: d.Svc}
    clientCfgCtrl := &controllers.ClientConfigController{Cfg: d.Cfg}
    ssoCtrl := &controllers.SSOController{Cfg: d.Cfg}
    examCtrl := &controllers.ExamController{
        Svc:             d.Svc,
        Timers:          d.Timers,
        Work:            d.Work,
        Attempts:        d.Attempts,
        TimerClearDelay: d.Cfg.TimerClearDelay,
    }
    monitorCtrl := &controllers.MonitoringController{
        Svc:      d.Svc,
        Work:     d.Work,
        Attempts: d.Attempts,
    }

    // Public
    r.GET("/api/v1/config", clientCfgCtrl.Get)
    auth := r.Group("/api/v1/auth")
    {
        auth.POST("/login", authCtrl.Login)
        auth.POST("/refresh", authCtrl.Refresh)
    }

    // Protected
    authMW := middleware.AuthMiddleware(d.DB, d.Cfg.JWTSecret)
    api := r.Group("/api/v1", authMW)
    {
        api.GET("/auth/me", authCtrl.Me)
        api.POST("/auth/logout", authCtrl.Logout)

        // Admin-only
        admin := api.Group("/admin", middleware.RequireRoles("admin"))
        {
            admin.GET("/users", adminCtrl.ListUsers)
            admin.POST("/users", authCtrl.Register) // admin-only registration (supports role/active)
            admin.GET("/users/:user_id", adminCtrl.GetUser)
            admin.PUT("/users/:user_id", adminCtrl.UpdateUser)
            admin.DELETE("/users/:user_id", adminCtrl.DeleteUser)

            // Ujian (course) configuration CRUD
            admin.GET("/ujian", courseCtrl.ListCourses)
            admin.POST("/ujian", courseCtrl.CreateCourse)
            admin.GET("/ujian/:id", courseCtrl.GetCourse)
            admin.PUT("/ujian/:id", courseCtrl.UpdateCourse)
            admin.POST("/ujian/:id/token", courseCtrl.RegenerateToken)
            admin.DELETE("/ujian/:id", courseCtrl.DeleteCourse)

            // Class reference list
            admin.GET("/kelas", kelasCtrl.ListKelas)
            admin.POST("/kelas", kelasCtrl.CreateKelas)
            admin.PUT("/kelas/:id", kelasCtrl.UpdateKelas)
            admin.DELETE("/kelas/:id", kelasCtrl.DeleteKelas)
            admin.GET("/kelas/:id/students", assignCtrl.ListMembers)
            admin.POST("/kelas/:id/students", assignCtrl.AssignStudents)
            admin.DELETE("/kelas/:id/students", assignCtrl.UnassignStudents)
        }

        // Siswa exam session endpoints (and admin, for support)
        siswa := api.Group("/exam", middleware.RequireRoles("siswa", "admin"))
        {
            siswa.POST("/status", examCtrl.SetStatus)
            siswa.POST("/submit", examCtrl.Submit)
            siswa.POST("/trail", examCtrl.SaveTrail)
            siswa.GET("/answers", examCtrl.LatestAnswers)
            siswa.GET("/timer", examCtrl.ReadTimer)
            siswa.PUT("/timer", examCtrl.WriteTimer)
            siswa.DELETE("/timer", examCtrl.ClearTimer)
            siswa.POST("/exit-code/consume", exitCodeCtrl.Consume)
            siswa.GET("/sso", ssoCtrl.GeneratePortalSSO)
        }

        // Monitoring commands for admin + pengawas
        monitoring := api.Group("/monitoring", middleware.RequireRoles("admin", "pengawas"))
        {
            monitoring.GET("/students", monitorCtrl.ListStudents)
            monitoring.GET("/progress", monitorCtrl.ClassProgress)
            monitoring.POST("/reset", monitorCtrl.ResetExam)
            monitoring.POST("/reset-class", monitorCtrl.ResetByClass)
            monitoring.POST("/reset-working", monitorCtrl.ResetAllWorking)
            monitoring.POST("/lock/:user_id", monitorCtrl.Lock)
            monitoring.POST("/unlock/:user_id", monitorCtrl.Unlock)
            monitoring.POST("/timer/add", monitorCtrl.AddTimer)

            monitoring.POST("/exit-codes", exitCodeCtrl.Generate)
            monitoring.GET("/exit-codes", exitCodeCtrl.List)
            monitoring.POST("/exit-codes/:id/revoke", exitCodeCtrl.Revoke)
        }

        // Push channel for dashboards
        api.GET("/ws/monitoring", ws.MonitoringHandler(d.Hub))
    }
}
