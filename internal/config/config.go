package config

import (
    "os"
    "strconv"
    "time"
)

type Config struct {
    Port       string
    DBHost     string
    DBPort     string
    DBUser     string
    DBPassword string
    DBName     string
    DBSSLMode  string
    JWTSecret  string
    AdminEmail    string
    AdminPassword string
    AdminFullName string
    // Token settings
    AccessTokenTTLMinutes string // minutes
    RefreshTokenTTLDays   string // days
    RefreshJWTSecret      string
    // Exam session settings
    SessionSweepInterval time.Duration
    SessionStaleAfter    time.Duration
    TimerClearDelay      time.Duration
    // Exam client settings
    MinAppVersion string
    // External exam portal SSO (disabled when unset)
    PortalSSOSecret   string
    PortalSSOLoginURL string
}

func Load() *Config {
    return &Config{
        Port:       getenv("PORT", "8080"),
        DBHost:     getenv("DB_HOST", "localhost"),
        DBPort:     getenv("DB_PORT", "5432"),
        DBUser:     getenv("DB_USER", "postgres"),
        DBPassword: getenv("DB_PASSWORD", "postgres"),
        DBName:     getenv("DB_NAME", "ujian_db"),
        DBSSLMode:  getenv("DB_SSLMODE", "disable"),
        JWTSecret:  getenv("JWT_SECRET", "supersecret_change_me"),
        AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
        AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
        AdminFullName: getenv("ADMIN_FULL_NAME", "Administrator"),
        AccessTokenTTLMinutes: getenv("ACCESS_TOKEN_TTL_MINUTES", "15"),
        RefreshTokenTTLDays:   getenv("REFRESH_TOKEN_TTL_DAYS", "30"),
        RefreshJWTSecret:      getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),
        SessionSweepInterval: getenvMinutes("SESSION_SWEEP_INTERVAL_MINUTES", 5),
        SessionStaleAfter:    getenvMinutes("SESSION_STALE_MINUTES", 20),
        TimerClearDelay:      getenvSeconds("TIMER_CLEAR_DELAY_SECONDS", 30),
        MinAppVersion:        getenv("MIN_APP_VERSION", ""),
        PortalSSOSecret:      getenv("PORTAL_SSO_SECRET", ""),
        PortalSSOLoginURL:    getenv("PORTAL_SSO_LOGIN_URL", ""),
    }
}

func getenv(key, fallback string) string {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    return v
}

func getenvMinutes(key string, fallback int) time.Duration {
    return time.Duration(getenvInt(key, fallback)) * time.Minute
}

func getenvSeconds(key string, fallback int) time.Duration {
    return time.Duration(getenvInt(key, fallback)) * time.Second
}

func getenvInt(key string, fallback int) int {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    n, err := strconv.Atoi(v)
    if err != nil || n <= 0 {
        return fallback
    }
    return n
}
