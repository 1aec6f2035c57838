package db

import (
	"context"
	"fmt"
	"time"

	"wanderlust/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(d *DB) *ReviewRepository {
	return &ReviewRepository{coll: d.Reviews}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// FindByIDs returns the reviews with the given ids in the order of ids.
// Missing ids are skipped.
func (r *ReviewRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	reviews := []models.Review{}
	if len(ids) == 0 {
		return reviews, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.Review
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return orderByIDs(found, ids), nil
}

func orderByIDs(found []models.Review, ids []primitive.ObjectID) []models.Review {
	byID := make(map[primitive.ObjectID]models.Review, len(found))
	for _, review := range found {
		byID[review.ID] = review
	}

	ordered := make([]models.Review, 0, len(found))
	for _, id := range ids {
		if review, ok := byID[id]; ok {
			ordered = append(ordered, review)
		}
	}
	return ordered
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return res.DeletedCount, nil
}

// Orphans returns ids of reviews created before cutoff that are missing from
// referenced or whose parent listing is not in listingIDs.
func (r *ReviewRepository) Orphans(ctx context.Context, referenced, listingIDs []primitive.ObjectID, cutoff time.Time) ([]primitive.ObjectID, error) {
	if referenced == nil {
		referenced = []primitive.ObjectID{}
	}
	if listingIDs == nil {
		listingIDs = []primitive.ObjectID{}
	}
	filter := bson.M{
		"created_at": bson.M{"$lt": cutoff},
		"$or": []bson.M{
			{"_id": bson.M{"$nin": referenced}},
			{"listing": bson.M{"$nin": listingIDs}},
		},
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orphan reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orphan reviews: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Existing filters ids down to those that still have a review document.
func (r *ReviewRepository) Existing(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}
	values, err := r.coll.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("distinct review ids: %w", err)
	}

	existing := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}
