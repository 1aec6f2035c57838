package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	db "wanderlust/database"
	"wanderlust/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errAbort = errors.New("abort")

func TestRollbackKeepsWritesFromOtherCallers(t *testing.T) {
	s := New()
	bg := context.Background()

	err := s.WithTransaction(bg, func(ctx context.Context) error {
		require.NoError(t, s.Users().Insert(ctx, &models.User{Username: "inside"}))
		// a signup from another request, not part of the transaction
		require.NoError(t, s.Users().Insert(bg, &models.User{Username: "bystander"}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = s.Users().FindByUsername(bg, "bystander")
	assert.NoError(t, err)
	_, err = s.Users().FindByUsername(bg, "inside")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRollbackKeepsListingsAddedMeanwhile(t *testing.T) {
	s := New()
	bg := context.Background()

	first := &models.Listing{Title: "First"}
	require.NoError(t, s.Listings().Insert(bg, first))

	err := s.WithTransaction(bg, func(ctx context.Context) error {
		require.NoError(t, s.Listings().Delete(ctx, first.ID))
		require.NoError(t, s.Listings().Insert(ctx, &models.Listing{Title: "Doomed"}))
		require.NoError(t, s.Listings().Insert(bg, &models.Listing{Title: "Other"}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	all, err := s.Listings().FindAll(bg)
	require.NoError(t, err)
	titles := make([]string, 0, len(all))
	for _, l := range all {
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"First", "Other"}, titles)
}

func TestRollbackRestoresReviewsAndLinks(t *testing.T) {
	s := New()
	bg := context.Background()

	listing := &models.Listing{Title: "Cabin"}
	require.NoError(t, s.Listings().Insert(bg, listing))
	review := &models.Review{Listing: listing.ID, Rating: 5, Comment: "Great", CreatedAt: time.Now()}
	require.NoError(t, s.Reviews().Insert(bg, review))
	require.NoError(t, s.Listings().PushReview(bg, listing.ID, review.ID))

	err := s.WithTransaction(bg, func(ctx context.Context) error {
		require.NoError(t, s.Listings().PullReview(ctx, listing.ID, review.ID))
		require.NoError(t, s.Reviews().Delete(ctx, review.ID))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := s.Listings().FindByID(bg, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{review.ID}, got.Reviews)
	assert.Equal(t, 1, s.ReviewCount())
}

func TestCommittedTransactionKeepsWrites(t *testing.T) {
	s := New()
	bg := context.Background()

	err := s.WithTransaction(bg, func(ctx context.Context) error {
		return s.Users().Insert(ctx, &models.User{Username: "ana"})
	})
	require.NoError(t, err)

	_, err = s.Users().FindByUsername(bg, "ana")
	assert.NoError(t, err)
}

func TestFindByIDsKeepsGivenOrder(t *testing.T) {
	s := New()
	bg := context.Background()

	older := &models.Review{Comment: "older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Review{Comment: "newer", CreatedAt: time.Now()}
	require.NoError(t, s.Reviews().Insert(bg, older))
	require.NoError(t, s.Reviews().Insert(bg, newer))

	got, err := s.Reviews().FindByIDs(bg, []primitive.ObjectID{newer.ID, older.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Comment)
	assert.Equal(t, "older", got[1].Comment)
}
