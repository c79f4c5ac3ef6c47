package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionToken is one row per browser session. Only a hash of the session
// id is stored so a leaked table cannot be replayed as cookies.
type SessionToken struct {
	SessionHash string    `gorm:"primaryKey;size:64"`
	Slot        string    `gorm:"primaryKey;size:32"`
	Token       string    `gorm:"type:text"`
	SavedAt     time.Time `gorm:"index"`
}

func (SessionToken) TableName() string { return "session_tokens" }

// GormStore keeps tokens in any gorm dialect; mysql in production, sqlite
// for single-node installs.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates the session_tokens table if needed.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&SessionToken{})
}

func hashSID(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:])
}

func (s *GormStore) Load(ctx context.Context, sid string) (string, error) {
	var row SessionToken
	err := s.db.WithContext(ctx).
		Where("session_hash = ? AND slot = ?", hashSID(sid), TokenKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(row.SavedAt) > s.ttl {
		_ = s.Clear(ctx, sid)
		return "", ErrNotFound
	}
	return row.Token, nil
}

func (s *GormStore) Save(ctx context.Context, sid, token string) error {
	row := SessionToken{SessionHash: hashSID(sid), Slot: TokenKey, Token: token, SavedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context, sid string) error {
	err := s.db.WithContext(ctx).
		Where("session_hash = ? AND slot = ?", hashSID(sid), TokenKey).
		Delete(&SessionToken{}).Error
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// PurgeExpired removes rows older than the store TTL and reports how many went.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("saved_at < ?", s.now().UTC().Add(-s.ttl)).
		Delete(&SessionToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
