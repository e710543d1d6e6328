// Package redis implements the repositories on go-redis for multi-process
// deployments. Key TTLs carry the expiry; a SETNX marker makes the consume
// atomic across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// ErrCodeNotConsumable mirrors the memory store's consume failure.
var ErrCodeNotConsumable = errors.New("authorization code cannot be consumed")

// AuthCodeRepository stores authorization codes as JSON values with the
// code's remaining lifetime as the key TTL.
type AuthCodeRepository struct {
	client *redis.Client
	prefix string
	clock  domain.Clock
}

// NewAuthCodeRepository creates the repository. prefix namespaces the keys.
func NewAuthCodeRepository(client *redis.Client, prefix string, clock domain.Clock) *AuthCodeRepository {
	return &AuthCodeRepository{client: client, prefix: prefix, clock: clock}
}

func (r *AuthCodeRepository) codeKey(code string) string {
	return fmt.Sprintf("%s:authcode:%s", r.prefix, code)
}

func (r *AuthCodeRepository) usedKey(code string) string {
	return fmt.Sprintf("%s:authcode_used:%s", r.prefix, code)
}

// Save stores the code until it expires. Already-expired codes are dropped
// silently; Redis cannot hold a key with a non-positive TTL.
func (r *AuthCodeRepository) Save(ctx context.Context, code *domain.AuthCode) error {
	ttl := code.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal auth code: %w", err)
	}
	if err := r.client.Set(ctx, r.codeKey(code.Code), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store auth code in redis: %w", err)
	}
	return nil
}

// FindByCode returns the code, nil when absent or expired. The used marker
// key is folded back into the entity's Used flag.
func (r *AuthCodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	raw, err := r.client.Get(ctx, r.codeKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read auth code from redis: %w", err)
	}
	var authCode domain.AuthCode
	if err := json.Unmarshal(raw, &authCode); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth code: %w", err)
	}
	used, err := r.client.Exists(ctx, r.usedKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read used marker from redis: %w", err)
	}
	if used > 0 {
		authCode.Used = true
	}
	return &authCode, nil
}

// ConsumeByCode claims the used marker with SETNX. Only the first caller
// wins; everyone else gets ErrCodeNotConsumable. The marker outlives the
// code key slightly so a late duplicate cannot sneak through.
func (r *AuthCodeRepository) ConsumeByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	authCode, err := r.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if authCode == nil || !authCode.IsValid(r.clock) {
		return nil, ErrCodeNotConsumable
	}

	markerTTL := authCode.ExpiresAt.Sub(r.clock.Now()) + time.Minute
	claimed, err := r.client.SetNX(ctx, r.usedKey(code), "1", markerTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim used marker in redis: %w", err)
	}
	if !claimed {
		return nil, ErrCodeNotConsumable
	}

	authCode.MarkAsUsed()
	return authCode, nil
}

// Cleanup is a no-op: key TTLs already evict expired codes.
func (r *AuthCodeRepository) Cleanup(context.Context) error {
	return nil
}

var _ domain.AuthCodeRepository = (*AuthCodeRepository)(nil)
