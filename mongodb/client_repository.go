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

// ClientRepository reads the client registry from MongoDB.
type ClientRepository struct {
	clients *mongo.Collection
}

// NewClientRepository creates the repository and ensures the unique
// client_id index.
func NewClientRepository(ctx context.Context, db *mongo.Database) (*ClientRepository, error) {
	repo := &ClientRepository{clients: db.Collection(ClientsCollection)}
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.clients.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create client index: %w", err)
	}
	return repo, nil
}

// Insert registers a client; used by seeding and provisioning tooling.
func (r *ClientRepository) Insert(ctx context.Context, client *domain.OAuthClient) error {
	if _, err := r.clients.InsertOne(ctx, client); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("client already registered: %w", err)
		}
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// FindByClientID returns the client, nil when unknown.
func (r *ClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error) {
	var client domain.OAuthClient
	err := r.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve client: %w", err)
	}
	return &client, nil
}

var _ domain.OAuthClientRepository = (*ClientRepository)(nil)
