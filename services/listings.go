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

const ListingNotFoundMessage = "Listing you requested for does not exist!"

type ListingService struct {
	listings ListingStore
	reviews  ReviewStore
	users    UserStore
	uow      UnitOfWork
	events   Publisher
	log      *zap.Logger
}

func NewListingService(listings ListingStore, reviews ReviewStore, users UserStore, uow UnitOfWork, events Publisher, log *zap.Logger) *ListingService {
	return &ListingService{
		listings: listings,
		reviews:  reviews,
		users:    users,
		uow:      uow,
		events:   events,
		log:      log,
	}
}

func listingNotFound() *utils.AppError {
	return utils.NotFound(ListingNotFoundMessage, "/listings")
}

func (s *ListingService) List(ctx context.Context) ([]models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	listings, err := s.listings.FindAll(ctx)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return listings, nil
}

// Get loads a listing by its hex id. Malformed and unknown ids are both not-found.
func (s *ListingService) Get(ctx context.Context, idHex string) (*models.Listing, error) {
	id, ok := parseID(idHex)
	if !ok {
		return nil, listingNotFound()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	listing, err := s.listings.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, listingNotFound()
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return listing, nil
}

// Detail loads a listing with its reviews and the names of everyone involved.
func (s *ListingService) Detail(ctx context.Context, idHex string) (*models.ListingDetail, error) {
	listing, err := s.Get(ctx, idHex)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	reviews, err := s.reviews.FindByIDs(ctx, listing.Reviews)
	if err != nil {
		return nil, utils.Internal(err)
	}

	userIDs := []primitive.ObjectID{listing.Owner}
	for _, r := range reviews {
		userIDs = append(userIDs, r.Author)
	}
	names, err := s.users.UsernamesByID(ctx, userIDs)
	if err != nil {
		return nil, utils.Internal(err)
	}

	detail := &models.ListingDetail{
		Listing:   *listing,
		OwnerName: names[listing.Owner],
		Reviews:   make([]models.ReviewDetail, 0, len(reviews)),
	}
	for _, r := range reviews {
		detail.Reviews = append(detail.Reviews, models.ReviewDetail{Review: r, AuthorName: names[r.Author]})
	}
	return detail, nil
}

func (s *ListingService) Create(ctx context.Context, owner primitive.ObjectID, in models.ListingInput) (*models.Listing, error) {
	listing := &models.Listing{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Reviews: []primitive.ObjectID{},
	}
	if err := in.Apply(listing); err != nil {
		return nil, utils.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.listings.Insert(ctx, listing); err != nil {
		return nil, utils.Internal(err)
	}

	s.publish(SubjectListingCreated, Event{Type: SubjectListingCreated, ListingID: listing.ID.Hex(), UserID: owner.Hex()})
	return listing, nil
}

func (s *ListingService) Update(ctx context.Context, listing *models.Listing, in models.ListingInput) error {
	if err := in.Apply(listing); err != nil {
		return utils.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.listings.Update(ctx, listing)
	if errors.Is(err, db.ErrNotFound) {
		return listingNotFound()
	}
	if err != nil {
		return utils.Internal(err)
	}

	s.publish(SubjectListingUpdated, Event{Type: SubjectListingUpdated, ListingID: listing.ID.Hex()})
	return nil
}

// Delete removes the listing and every review it references in one unit of work.
func (s *ListingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var removed int64
	err := s.uow.WithTransaction(ctx, func(ctx context.Context) error {
		listing, err := s.listings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if removed, err = s.reviews.DeleteMany(ctx, listing.Reviews); err != nil {
			return err
		}
		return s.listings.Delete(ctx, id)
	})
	if errors.Is(err, db.ErrNotFound) {
		return listingNotFound()
	}
	if err != nil {
		return utils.Internal(err)
	}

	s.log.Info("listing deleted", zap.String("listing_id", id.Hex()), zap.Int64("reviews_removed", removed))
	s.publish(SubjectListingDeleted, Event{Type: SubjectListingDeleted, ListingID: id.Hex()})
	return nil
}

func (s *ListingService) publish(subject string, ev Event) {
	if s.events == nil {
		return
	}
	ev.At = time.Now()
	if err := s.events.Publish(subject, ev); err != nil {
		s.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
