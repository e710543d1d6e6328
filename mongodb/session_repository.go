package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// SessionRepository persists browser sessions in MongoDB.
type SessionRepository struct {
	sessions *mongo.Collection
	clock    domain.Clock
}

// NewSessionRepository creates the repository and ensures the user index
// plus a TTL index on expires_at.
func NewSessionRepository(ctx context.Context, db *mongo.Database, clock domain.Clock) (*SessionRepository, error) {
	repo := &SessionRepository{
		sessions: db.Collection(SessionsCollection),
		clock:    clock,
	}
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := repo.sessions.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create session indexes: %w", err)
	}
	return repo, nil
}

// Save upserts the session by its ID.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.sessions.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID returns the session, nil when absent.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}
	return &session, nil
}

// DeleteByID removes one session. Absent sessions are not an error.
func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes every session the user holds.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.sessions.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions eagerly and reports the count; the TTL
// index lags by design.
func (r *SessionRepository) Cleanup(ctx context.Context) (int, error) {
	res, err := r.sessions.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": r.clock.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return int(res.DeletedCount), nil
}

var _ domain.SessionRepository = (*SessionRepository)(nil)
