package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
)

const (
	tokenKeyPrefix = "revoked:token:"
	expiryIndexKey = "revoked:expiry"
)

// Store is the durable set of revoked refresh tokens, backed by Redis. It is
// the only shared mutable state in the service. All operations absorb storage
// failures: a Redis outage must degrade revocation enforcement, never the
// login/refresh/logout path itself (fail-open, availability over strictness).
type Store struct {
	client *redis.Client
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewStore builds the store.
func NewStore(client *redis.Client, tokens *auth.TokenManager, logger *zap.Logger) *Store {
	return &Store{client: client, tokens: tokens, logger: logger}
}

// Revoke records the refresh token so it is never honored again. The token's
// own expiry is decoded without signature verification; a token with no
// decodable expiry is skipped silently since there is nothing useful to store.
// Storage failures are logged and swallowed so a failed revocation never
// aborts an in-flight logout.
func (s *Store) Revoke(ctx context.Context, refreshToken, subjectID string) {
	expiresAt, err := s.tokens.DecodeExpiry(refreshToken)
	if err != nil {
		s.logger.Debug("skipping revocation of undecodable token", zap.String("subject_id", subjectID))
		return
	}

	digest := tokenDigest(refreshToken)
	now := time.Now()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, tokenKeyPrefix+digest,
			"subject_id", subjectID,
			"revoked_at", now.UTC().Format(time.RFC3339),
			"expires_at", strconv.FormatInt(expiresAt.Unix(), 10),
		)
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{Score: float64(expiresAt.Unix()), Member: digest})
		return nil
	})
	if err != nil {
		s.logger.Warn("revocation insert failed; token remains usable until expiry",
			zap.String("subject_id", subjectID), zap.Error(err))
	}
}

// IsRevoked reports whether the refresh token has been revoked. On storage
// failure it logs and returns false: a transient outage must not lock out
// legitimate users, at the cost of a brief window where a revoked token could
// still refresh.
func (s *Store) IsRevoked(ctx context.Context, refreshToken string) bool {
	exists, err := s.client.Exists(ctx, tokenKeyPrefix+tokenDigest(refreshToken)).Result()
	if err != nil {
		s.logger.Warn("revocation check failed; failing open", zap.Error(err))
		return false
	}
	return exists > 0
}

// PurgeExpired deletes every record whose stored expiry is strictly before
// now and returns the number deleted. Expired records are no longer needed for
// denial: the token itself already fails expiry verification. On failure it
// logs and returns 0.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) int64 {
	cutoff := "(" + strconv.FormatInt(now.Unix(), 10)
	digests, err := s.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: cutoff,
	}).Result()
	if err != nil {
		s.logger.Warn("revocation purge scan failed", zap.Error(err))
		return 0
	}
	if len(digests) == 0 {
		return 0
	}

	keys := make([]string, len(digests))
	for i, digest := range digests {
		keys[i] = tokenKeyPrefix + digest
	}

	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		s.logger.Warn("revocation purge delete failed", zap.Error(err))
		return 0
	}
	if err := s.client.ZRemRangeByScore(ctx, expiryIndexKey, "-inf", cutoff).Err(); err != nil {
		s.logger.Warn("revocation purge index trim failed", zap.Error(err))
	}
	return deleted
}

// tokenDigest keys the blacklist by raw token value without ever persisting a
// usable credential.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
