package services

import (
	"context"
	"errors"
	"time"

	db "wanderlust/database"
	"wanderlust/models"
	"wanderlust/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewService struct {
	listings ListingStore
	reviews  ReviewStore
	uow      UnitOfWork
	events   Publisher
	log      *zap.Logger
}

func NewReviewService(listings ListingStore, reviews ReviewStore, uow UnitOfWork, events Publisher, log *zap.Logger) *ReviewService {
	return &ReviewService{listings: listings, reviews: reviews, uow: uow, events: events, log: log}
}

// Create stores the review and appends it to the listing in one unit of work.
func (s *ReviewService) Create(ctx context.Context, listingHex string, author primitive.ObjectID, in models.ReviewInput) (*models.Review, error) {
	listingID, ok := parseID(listingHex)
	if !ok {
		return nil, listingNotFound()
	}

	review := in.Review(listingID, author)
	review.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.uow.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.listings.FindByID(ctx, listingID); err != nil {
			return err
		}
		if err := s.reviews.Insert(ctx, &review); err != nil {
			return err
		}
		return s.listings.PushReview(ctx, listingID, review.ID)
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, listingNotFound()
	}
	if err != nil {
		return nil, utils.Internal(err)
	}

	s.publish(SubjectReviewCreated, Event{
		Type:      SubjectReviewCreated,
		ListingID: listingID.Hex(),
		ReviewID:  review.ID.Hex(),
		UserID:    author.Hex(),
	})
	return &review, nil
}

// Get loads a review by hex id. redirect is where a missing review sends the user.
func (s *ReviewService) Get(ctx context.Context, reviewHex, redirect string) (*models.Review, error) {
	notFound := utils.NotFound("Review you requested for does not exist!", redirect)

	id, ok := parseID(reviewHex)
	if !ok {
		return nil, notFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	review, err := s.reviews.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return review, nil
}

// Delete unlinks the review from its listing, then removes the review document.
func (s *ReviewService) Delete(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.uow.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.listings.PullReview(ctx, listingID, reviewID); err != nil {
			return err
		}
		return s.reviews.Delete(ctx, reviewID)
	})
	if errors.Is(err, db.ErrNotFound) {
		return utils.NotFound("Review you requested for does not exist!", "/listings/"+listingID.Hex())
	}
	if err != nil {
		return utils.Internal(err)
	}

	s.publish(SubjectReviewDeleted, Event{Type: SubjectReviewDeleted, ListingID: listingID.Hex(), ReviewID: reviewID.Hex()})
	return nil
}

func (s *ReviewService) publish(subject string, ev Event) {
	if s.events == nil {
		return
	}
	ev.At = time.Now()
	if err := s.events.Publish(subject, ev); err != nil {
		s.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
