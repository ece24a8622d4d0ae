package helper

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

/*
   =========================================================
   Revoked access tokens
   Redis (fast path, TTL = token lifetime) + token_blacklist table.
   Only HMAC(token) is stored.
   =========================================================
*/

const redisBlacklistPrefix = "colegio:bl:"

type Blacklist struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil ⇒ DB only
	Secret string
}

func NewBlacklist(db *gorm.DB, rdb *redis.Client, secret string) *Blacklist {
	return &Blacklist{DB: db, Redis: rdb, Secret: secret}
}

// NewRedisFromURL returns nil when url is blank or invalid.
func NewRedisFromURL(url string) *redis.Client {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] REDIS_URL inválido: %v (blacklist sólo en DB)", err)
		return nil
	}
	return redis.NewClient(opt)
}

func hmacHex(msg, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

// Add revokes raw until expiresAt.
func (b *Blacklist) Add(ctx context.Context, raw string, expiresAt time.Time) error {
	if strings.TrimSpace(raw) == "" || b.Secret == "" {
		return nil
	}
	digest := hmacHex(raw, b.Secret)

	if b.Redis != nil {
		if ttl := time.Until(expiresAt); ttl > 0 {
			if err := b.Redis.Set(ctx, redisBlacklistPrefix+digest, 1, ttl).Err(); err != nil {
				log.Printf("[WARN] redis blacklist set: %v", err)
			}
		}
	}
	if b.DB == nil {
		return nil
	}
	return b.DB.WithContext(ctx).Exec(`
		INSERT INTO token_blacklist (token, expired_at, created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (token) DO UPDATE
		SET expired_at = EXCLUDED.expired_at,
		    deleted_at = NULL
	`, digest, expiresAt).Error
}

// IsBlacklisted checks Redis first and falls back to the table on a miss or error.
func (b *Blacklist) IsBlacklisted(ctx context.Context, raw string) (bool, error) {
	if strings.TrimSpace(raw) == "" || b.Secret == "" {
		return false, nil
	}
	digest := hmacHex(raw, b.Secret)

	if b.Redis != nil {
		n, err := b.Redis.Exists(ctx, redisBlacklistPrefix+digest).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			log.Printf("[WARN] redis blacklist exists: %v", err)
		}
	}
	if b.DB == nil {
		return false, nil
	}
	var exists bool
	err := b.DB.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1 FROM token_blacklist
		  WHERE token = ? AND deleted_at IS NULL AND expired_at > NOW()
		)
	`, digest).Scan(&exists).Error
	return exists, err
}

// PurgeExpired hard-deletes rows past their expiry. Redis keys expire on their own.
func (b *Blacklist) PurgeExpired(ctx context.Context) (int64, error) {
	if b.DB == nil {
		return 0, nil
	}
	res := b.DB.WithContext(ctx).Exec(`DELETE FROM token_blacklist WHERE expired_at <= NOW()`)
	return res.RowsAffected, res.Error
}
