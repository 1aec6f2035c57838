package db

import (
	"context"
	"fmt"

	"wanderlust/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ListingRepository struct {
	coll *mongo.Collection
}

func NewListingRepository(d *DB) *ListingRepository {
	return &ListingRepository{coll: d.Listings}
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]models.Listing, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (r *ListingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}
	if _, err := r.coll.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("insert listing: %w", translate(err))
	}
	return nil
}

// Update replaces the editable fields of a listing. Reviews and owner are untouched.
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	update := bson.M{
		"$set": bson.M{
			"title":       listing.Title,
			"description": listing.Description,
			"image":       listing.Image,
			"price":       listing.Price,
			"location":    listing.Location,
			"country":     listing.Country,
		},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": listing.ID}, update)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{"$push": bson.M{"reviews": reviewID}},
	)
	if err != nil {
		return fmt.Errorf("push review: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{"$pull": bson.M{"reviews": reviewID}},
	)
	if err != nil {
		return fmt.Errorf("pull review: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullReviews removes every id in reviewIDs from all listings that reference them.
func (r *ListingRepository) PullReviews(ctx context.Context, reviewIDs []primitive.ObjectID) (int64, error) {
	if len(reviewIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"reviews": bson.M{"$in": reviewIDs}},
		bson.M{"$pull": bson.M{"reviews": bson.M{"$in": reviewIDs}}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull reviews: %w", err)
	}
	return res.ModifiedCount, nil
}

// ReviewRefs returns every review id referenced by any listing.
func (r *ListingRepository) ReviewRefs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.coll.Distinct(ctx, "reviews", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct review refs: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IDs returns the ids of all listings.
func (r *ListingRepository) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.coll.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct listing ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
