// Package mongodb implements the repositories on MongoDB. Expiry is handled
// by TTL indexes; the single-use consume rides on FindOneAndUpdate.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// Collection names.
const (
	AuthCodesCollection = "oauth_auth_codes"
	SessionsCollection  = "oauth_sessions"
	UsersCollection     = "users"
	ClientsCollection   = "oauth_clients"
)

const connectTimeout = 10 * time.Second

// Connect opens an instrumented MongoDB client and verifies connectivity.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor())

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(dbName), nil
}
