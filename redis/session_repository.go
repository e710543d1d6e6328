package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// SessionRepository stores sessions as JSON values with the session TTL on
// the key, plus a per-user set for bulk revocation.
type SessionRepository struct {
	client *redis.Client
	prefix string
	clock  domain.Clock
}

// NewSessionRepository creates the repository. prefix namespaces the keys.
func NewSessionRepository(client *redis.Client, prefix string, clock domain.Clock) *SessionRepository {
	return &SessionRepository{client: client, prefix: prefix, clock: clock}
}

func (r *SessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, id)
}

func (r *SessionRepository) userKey(userID string) string {
	return fmt.Sprintf("%s:user_sessions:%s", r.prefix, userID)
}

// Save stores the session and indexes it under its user.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl := session.TTL(r.clock)
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), payload, ttl)
	pipe.SAdd(ctx, r.userKey(session.UserID), session.ID)
	// The index lives as long as the longest-lived session could.
	pipe.Expire(ctx, r.userKey(session.UserID), domain.RememberMeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// FindByID returns the session, nil when absent or expired out of Redis.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteByID removes one session and its index entry.
func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(id))
	if session != nil {
		pipe.SRem(ctx, r.userKey(session.UserID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// DeleteByUserID removes every session indexed under the user.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions in redis: %w", err)
	}
	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, r.sessionKey(id))
	}
	pipe.Del(ctx, r.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions from redis: %w", err)
	}
	return nil
}

// Cleanup prunes index entries whose sessions already expired. The session
// values themselves are evicted by their key TTLs.
func (r *SessionRepository) Cleanup(ctx context.Context) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, r.userKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		userKey := iter.Val()
		ids, err := r.client.SMembers(ctx, userKey).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to read session index: %w", err)
		}
		for _, id := range ids {
			exists, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to probe session key: %w", err)
			}
			if exists == 0 {
				if err := r.client.SRem(ctx, userKey, id).Err(); err != nil {
					return removed, fmt.Errorf("failed to prune session index: %w", err)
				}
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("session index scan failed: %w", err)
	}
	return removed, nil
}

var _ domain.SessionRepository = (*SessionRepository)(nil)
