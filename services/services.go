package services

import (
	"context"
	"time"

	"wanderlust/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// persistence calls share this budget, matching the request handlers
const opTimeout = 5 * time.Second

type ListingStore interface {
	FindAll(ctx context.Context) ([]models.Listing, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	Insert(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	PullReviews(ctx context.Context, reviewIDs []primitive.ObjectID) (int64, error)
	ReviewRefs(ctx context.Context) ([]primitive.ObjectID, error)
	IDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Orphans(ctx context.Context, referenced, listingIDs []primitive.ObjectID, cutoff time.Time) ([]primitive.ObjectID, error)
	Existing(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// UnitOfWork groups writes so they commit or fail together.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher emits domain events. Implementations must tolerate being disabled.
type Publisher interface {
	Publish(subject string, payload any) error
}

type Event struct {
	Type      string    `json:"type"`
	ListingID string    `json:"listing_id"`
	ReviewID  string    `json:"review_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}

const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
	SubjectReviewCreated  = "review.created"
	SubjectReviewDeleted  = "review.deleted"
)

func parseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}
