package exam

import (
    "context"
    "errors"
    "time"

    "github.com/rs/zerolog"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

const (
    SessionOnline  = "online"
    SessionOffline = "offline"
)

// SessionRegistry owns the single online/offline flag per user and enforces
// login exclusivity: at most one active browser session per user, checked at
// login time.
type SessionRegistry struct {
    db  *gorm.DB
    now func() time.Time
    log zerolog.Logger
}

func NewSessionRegistry(db *gorm.DB, log zerolog.Logger) *SessionRegistry {
    return &SessionRegistry{db: db, now: time.Now, log: log}
}

// SetStatus upserts the session row for userID. Unknown users get a fresh
// row; the write always refreshes last_update.
func (r *SessionRegistry) SetStatus(userID uint, status string) error {
    sess := models.UserSession{
        UserIDRef:  userID,
        Status:     status,
        LastUpdate: r.now().UTC(),
    }
    return r.db.Clauses(clause.OnConflict{
        Columns:   []clause.Column{{Name: "user_id_ref"}},
        DoUpdates: clause.AssignmentColumns([]string{"status", "last_update"}),
    }).Create(&sess).Error
}

// IsOnline reports the current flag. An absent row means offline with no
// timestamp.
func (r *SessionRegistry) IsOnline(userID uint) (bool, *time.Time, error) {
    var sess models.UserSession
    err := r.db.Where("user_id_ref = ?", userID).First(&sess).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return false, nil, nil
        }
        return false, nil, err
    }
    last := sess.LastUpdate
    return sess.Status == SessionOnline, &last, nil
}

// LoginAllowed returns false while the user is flagged online elsewhere.
func (r *SessionRegistry) LoginAllowed(userID uint) (bool, error) {
    online, _, err := r.IsOnline(userID)
    if err != nil {
        return false, err
    }
    return !online, nil
}

// SweepStale flips every online session older than staleAfter to offline.
// Guards against crashed clients that never called logout.
func (r *SessionRegistry) SweepStale(staleAfter time.Duration) (int64, error) {
    now := r.now().UTC()
    cutoff := now.Add(-staleAfter)
    res := r.db.Model(&models.UserSession{}).
        Where("status = ? AND last_update < ?", SessionOnline, cutoff).
        Updates(map[string]interface{}{"status": SessionOffline, "last_update": now})
    return res.RowsAffected, res.Error
}

// RunSweeper loops SweepStale at the given interval until ctx is done.
func (r *SessionRegistry) RunSweeper(ctx context.Context, interval, staleAfter time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            n, err := r.SweepStale(staleAfter)
            if err != nil {
                r.log.Error().Err(err).Msg("session sweep failed")
                continue
            }
            if n > 0 {
                r.log.Info().Int64("expired", n).Msg("forced stale sessions offline")
            }
        }
    }
}
