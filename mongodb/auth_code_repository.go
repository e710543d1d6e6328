package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// ErrCodeNotConsumable mirrors the memory store's consume failure.
var ErrCodeNotConsumable = errors.New("authorization code cannot be consumed")

// authCodeRecord is the persistence shape of an AuthCode; value objects are
// flattened to primitives for BSON.
type authCodeRecord struct {
	Code                string    `bson:"code"`
	UserID              string    `bson:"user_id"`
	ClientID            string    `bson:"client_id"`
	RedirectURI         string    `bson:"redirect_uri"`
	Scope               string    `bson:"scope,omitempty"`
	State               string    `bson:"state,omitempty"`
	ExpiresAt           time.Time `bson:"expires_at"`
	Used                bool      `bson:"used"`
	CreatedAt           time.Time `bson:"created_at"`
	CodeChallenge       string    `bson:"code_challenge"`
	CodeChallengeMethod string    `bson:"code_challenge_method"`
}

func toAuthCodeRecord(code *domain.AuthCode) authCodeRecord {
	return authCodeRecord{
		Code:                code.Code,
		UserID:              code.UserID,
		ClientID:            code.ClientID.String(),
		RedirectURI:         code.RedirectURI,
		Scope:               code.Scope,
		State:               code.State,
		ExpiresAt:           code.ExpiresAt,
		Used:                code.Used,
		CreatedAt:           code.CreatedAt,
		CodeChallenge:       code.CodeChallenge.Challenge(),
		CodeChallengeMethod: string(code.CodeChallenge.Method()),
	}
}

func (r authCodeRecord) toDomain() *domain.AuthCode {
	return &domain.AuthCode{
		Code:        r.Code,
		UserID:      r.UserID,
		ClientID:    domain.RestoreClientID(r.ClientID),
		RedirectURI: r.RedirectURI,
		Scope:       r.Scope,
		State:       r.State,
		ExpiresAt:   r.ExpiresAt,
		Used:        r.Used,
		CreatedAt:   r.CreatedAt,
		CodeChallenge: domain.RestoreCodeChallenge(
			r.CodeChallenge, domain.CodeChallengeMethod(r.CodeChallengeMethod)),
	}
}

// AuthCodeRepository persists authorization codes in MongoDB.
type AuthCodeRepository struct {
	codes *mongo.Collection
	clock domain.Clock
}

// NewAuthCodeRepository creates the repository and ensures the unique code
// index plus a TTL index on expires_at.
func NewAuthCodeRepository(ctx context.Context, db *mongo.Database, clock domain.Clock) (*AuthCodeRepository, error) {
	repo := &AuthCodeRepository{
		codes: db.Collection(AuthCodesCollection),
		clock: clock,
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := repo.codes.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create auth code indexes: %w", err)
	}
	return repo, nil
}

// Save inserts a freshly issued code. Duplicate code values are an error.
func (r *AuthCodeRepository) Save(ctx context.Context, code *domain.AuthCode) error {
	if code.Code == "" {
		return errors.New("auth code value cannot be empty")
	}
	if _, err := r.codes.InsertOne(ctx, toAuthCodeRecord(code)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("authorization code already exists: %w", err)
		}
		return fmt.Errorf("failed to save authorization code: %w", err)
	}
	return nil
}

// FindByCode returns the code, nil when absent.
func (r *AuthCodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	var record authCodeRecord
	err := r.codes.FindOne(ctx, bson.M{"code": code}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve authorization code: %w", err)
	}
	return record.toDomain(), nil
}

// ConsumeByCode atomically flips the used flag with FindOneAndUpdate. The
// filter only matches unused, unexpired codes, so concurrent consumes of
// the same code resolve to exactly one winner at the storage layer.
func (r *AuthCodeRepository) ConsumeByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	filter := bson.M{
		"code":       code,
		"used":       false,
		"expires_at": bson.M{"$gt": r.clock.Now()},
	}
	update := bson.M{"$set": bson.M{"used": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record authCodeRecord
	err := r.codes.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCodeNotConsumable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}
	return record.toDomain(), nil
}

// Cleanup removes expired codes eagerly; the TTL index lags by design.
func (r *AuthCodeRepository) Cleanup(ctx context.Context) error {
	_, err := r.codes.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": r.clock.Now()}})
	return err
}

var _ domain.AuthCodeRepository = (*AuthCodeRepository)(nil)
