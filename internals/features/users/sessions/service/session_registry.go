// internals/features/users/sessions/service/session_registry.go
package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "pmhub_backend/internals/features/users/sessions/model"
)

const (
	CloseReasonLogout  = "logout"
	CloseReasonAdmin   = "admin"
	CloseReasonIdle    = "idle"
	CloseReasonRelogin = "relogin"
)

// ErrSessionExpired: sesi ada tapi sudah melewati idle threshold.
var ErrSessionExpired = errors.New("session expired")

// ErrNoActiveSession: tidak ada sesi aktif untuk user.
var ErrNoActiveSession = errors.New("no active session")

// SessionRegistry menjaga invariant: maksimal satu sesi aktif per user.
// Critical section per user diserialisasi lewat striped mutex; update baris
// tetap berjalan dalam satu transaksi DB.
type SessionRegistry struct {
	DB          *gorm.DB
	IdleTimeout time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewSessionRegistry(db *gorm.DB, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		DB:          db,
		IdleTimeout: idleTimeout,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

func (r *SessionRegistry) lockFor(userID uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

// OpenSession menutup semua sesi aktif user (reason=relogin) lalu membuat
// sesi baru, dalam satu transaksi.
func (r *SessionRegistry) OpenSession(userID uuid.UUID, ip, userAgent string) (uuid.UUID, error) {
	l := r.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	sessionID := uuid.New()

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := closeActiveTx(tx, userID, CloseReasonRelogin, now); err != nil {
			return err
		}
		return tx.Create(&sessionModel.SessionModel{
			SessionID:               sessionID,
			SessionUserID:           userID,
			SessionLoginTime:        now,
			SessionLastActivityTime: now,
			SessionIsActive:         true,
			SessionIP:               ip,
			SessionUserAgent:        userAgent,
		}).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return sessionID, nil
}

// Touch memperbarui last_activity_time saja.
func (r *SessionRegistry) Touch(userID uuid.UUID) error {
	return r.DB.Model(&sessionModel.SessionModel{}).
		Where("session_user_id = ? AND session_is_active = ?", userID, true).
		Update("session_last_activity_time", time.Now()).Error
}

// CheckAndTouch memvalidasi liveness sesi aktif user. Jika sudah idle
// melewati threshold, sesi ditutup (reason=idle) dan ErrSessionExpired
// dikembalikan. Jika masih hidup, last_activity_time di-touch.
func (r *SessionRegistry) CheckAndTouch(userID uuid.UUID) error {
	var s sessionModel.SessionModel
	err := r.DB.
		Where("session_user_id = ? AND session_is_active = ?", userID, true).
		Order("session_login_time DESC").
		Limit(1).
		Find(&s).Error
	if err != nil {
		return err
	}
	if s.SessionID == uuid.Nil {
		return ErrNoActiveSession
	}

	if time.Since(s.SessionLastActivityTime) > r.IdleTimeout {
		if _, err := r.CloseActiveSessions(userID, CloseReasonIdle); err != nil {
			log.Printf("[ERROR] close idle session: %v", err)
		}
		return ErrSessionExpired
	}
	return r.Touch(userID)
}

// IsLive melaporkan apakah user punya sesi aktif yang belum idle.
func (r *SessionRegistry) IsLive(userID uuid.UUID) (bool, error) {
	err := r.CheckAndTouch(userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrNoActiveSession):
		return false, nil
	default:
		return false, err
	}
}

// CloseActiveSessions menutup semua sesi aktif user dan mengembalikan
// jumlah sesi yang ditutup.
func (r *SessionRegistry) CloseActiveSessions(userID uuid.UUID, reason string) (int, error) {
	now := time.Now()
	closed := 0
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		n, err := closeActiveCountTx(tx, userID, reason, now)
		closed = n
		return err
	})
	return closed, err
}

// CloseSession menutup satu sesi berdasarkan id (dipakai admin terminate).
func (r *SessionRegistry) CloseSession(sessionID uuid.UUID, reason string) error {
	var s sessionModel.SessionModel
	if err := r.DB.First(&s, "session_id = ?", sessionID).Error; err != nil {
		return err
	}
	if !s.SessionIsActive {
		return nil
	}
	return r.closeRow(r.DB, &s, reason, time.Now())
}

// ReapIdle menutup semua sesi aktif yang last_activity_time-nya lebih tua
// dari now − threshold. Dipanggil worker periodik.
func (r *SessionRegistry) ReapIdle(threshold time.Duration) (int, error) {
	cutoff := time.Now().Add(-threshold)

	var stale []sessionModel.SessionModel
	if err := r.DB.
		Where("session_is_active = ? AND session_last_activity_time < ?", true, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	reaped := 0
	now := time.Now()
	for i := range stale {
		if err := r.closeRow(r.DB, &stale[i], CloseReasonIdle, now); err != nil {
			log.Printf("[ERROR] reap session %s: %v", stale[i].SessionID, err)
			continue
		}
		reaped++
	}
	return reaped, nil
}

func (r *SessionRegistry) closeRow(db *gorm.DB, s *sessionModel.SessionModel, reason string, now time.Time) error {
	duration := int64(now.Sub(s.SessionLoginTime).Seconds())
	return db.Model(&sessionModel.SessionModel{}).
		Where("session_id = ? AND session_is_active = ?", s.SessionID, true).
		Updates(map[string]interface{}{
			"session_is_active":    false,
			"session_logout_time":  now,
			"session_duration":     duration,
			"session_close_reason": reason,
		}).Error
}

func closeActiveTx(tx *gorm.DB, userID uuid.UUID, reason string, now time.Time) error {
	_, err := closeActiveCountTx(tx, userID, reason, now)
	return err
}

func closeActiveCountTx(tx *gorm.DB, userID uuid.UUID, reason string, now time.Time) (int, error) {
	var open []sessionModel.SessionModel
	if err := tx.
		Where("session_user_id = ? AND session_is_active = ?", userID, true).
		Find(&open).Error; err != nil {
		return 0, err
	}
	for i := range open {
		duration := int64(now.Sub(open[i].SessionLoginTime).Seconds())
		if err := tx.Model(&sessionModel.SessionModel{}).
			Where("session_id = ?", open[i].SessionID).
			Updates(map[string]interface{}{
				"session_is_active":    false,
				"session_logout_time":  now,
				"session_duration":     duration,
				"session_close_reason": reason,
			}).Error; err != nil {
			return 0, err
		}
	}
	return len(open), nil
}
