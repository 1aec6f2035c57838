package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	ListingCollection = "listings"
	ReviewCollection  = "reviews"
	UserCollection    = "users"
)

// DB holds the mongo client and the collections of the wanderlust database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database

	Listings *mongo.Collection
	Reviews  *mongo.Collection
	Users    *mongo.Collection

	transactions bool
	log          *zap.Logger
}

// Connect dials MongoDB, pings it and ensures the indexes the app relies on.
func Connect(ctx context.Context, uri, database string, transactions bool, log *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	d := &DB{
		Client:       client,
		Database:     client.Database(database),
		transactions: transactions,
		log:          log,
	}
	d.Listings = d.Database.Collection(ListingCollection)
	d.Reviews = d.Database.Collection(ReviewCollection)
	d.Users = d.Database.Collection(UserCollection)

	if err := d.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("connected to MongoDB", zap.String("database", database), zap.Bool("transactions", transactions))
	return d, nil
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	_, err := d.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.username index: %w", err)
	}

	_, err = d.Reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listing", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create reviews.listing index: %w", err)
	}
	return nil
}

// Disconnect closes the client. Safe to call on a nil DB.
func (d *DB) Disconnect() {
	if d == nil || d.Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		d.log.Error("failed to disconnect MongoDB", zap.Error(err))
		return
	}
	d.log.Info("disconnected from MongoDB")
}

// WithTransaction runs fn as one unit of work. With transactions disabled
// (standalone mongod) fn runs directly against ctx.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.transactions {
		return fn(ctx)
	}

	session, err := d.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
