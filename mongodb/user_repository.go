package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/internal/auth"
)

// UserRepository reads user accounts from MongoDB.
type UserRepository struct {
	users  *mongo.Collection
	hasher auth.PasswordHasher
}

// NewUserRepository creates the repository and ensures unique email and
// sparse unique username indexes.
func NewUserRepository(ctx context.Context, db *mongo.Database, hasher auth.PasswordHasher) (*UserRepository, error) {
	repo := &UserRepository{
		users:  db.Collection(UsersCollection),
		hasher: hasher,
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := repo.users.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}
	return repo, nil
}

// Insert adds a user; used by seeding and provisioning tooling.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user already exists: %w", err)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ValidateCredentials authenticates by email or username. A miss returns
// nil without error so the caller cannot tell an unknown account from a
// wrong password.
func (r *UserRepository) ValidateCredentials(ctx context.Context, emailOrUsername, password string) (*domain.User, error) {
	user, err := r.FindByEmail(ctx, emailOrUsername)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = r.FindByUsername(ctx, emailOrUsername)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, nil
	}
	if err := r.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, fmt.Errorf("credential verification failed: %w", err)
	}
	return user, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
