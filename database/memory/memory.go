// Package memory keeps listings, reviews and users in process memory. It backs
// the test suites and the memory:// development mode.
package memory

import (
	"context"
	"sync"
	"time"

	db "wanderlust/database"
	"wanderlust/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	listings map[primitive.ObjectID]models.Listing
	order    []primitive.ObjectID
	reviews  map[primitive.ObjectID]models.Review
	users    map[primitive.ObjectID]models.User

	// FailNext, when set, is returned by the next write and then cleared.
	FailNext error
}

func New() *Store {
	return &Store{
		listings: map[primitive.ObjectID]models.Listing{},
		reviews:  map[primitive.ObjectID]models.Review{},
		users:    map[primitive.ObjectID]models.User{},
	}
}

func (s *Store) Listings() *Listings { return &Listings{s} }
func (s *Store) Reviews() *Reviews   { return &Reviews{s} }
func (s *Store) Users() *Users       { return &Users{s} }

// WithTransaction runs fn and, when it fails, reverts the writes fn made
// through the context it was given. Writes from other callers are kept.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := newUndoLog()
	if err := fn(context.WithValue(ctx, txKey{}, undo)); err != nil {
		s.mu.Lock()
		undo.revert(s)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// ReviewCount is the number of stored review documents.
func (s *Store) ReviewCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

// PutReview stores a review without touching any listing.
func (s *Store) PutReview(r models.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
}

type Listings struct{ s *Store }

func (l *Listings) FindAll(ctx context.Context) ([]models.Listing, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	out := make([]models.Listing, 0, len(l.s.order))
	for _, id := range l.s.order {
		out = append(out, clone(l.s.listings[id]))
	}
	return out, nil
}

func (l *Listings) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	listing, ok := l.s.listings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := clone(listing)
	return &c, nil
}

func (l *Listings) Insert(ctx context.Context, listing *models.Listing) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if err := l.s.takeFailure(); err != nil {
		return err
	}
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}
	undo := undoFrom(ctx)
	undo.listing(l.s, listing.ID)
	undo.saveOrder(l.s)
	l.s.listings[listing.ID] = clone(*listing)
	l.s.order = append(l.s.order, listing.ID)
	return nil
}

func (l *Listings) Update(ctx context.Context, listing *models.Listing) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if err := l.s.takeFailure(); err != nil {
		return err
	}
	cur, ok := l.s.listings[listing.ID]
	if !ok {
		return db.ErrNotFound
	}
	undoFrom(ctx).listing(l.s, listing.ID)
	cur.Title = listing.Title
	cur.Description = listing.Description
	cur.Image = listing.Image
	cur.Price = listing.Price
	cur.Location = listing.Location
	cur.Country = listing.Country
	l.s.listings[listing.ID] = cur
	return nil
}

func (l *Listings) Delete(ctx context.Context, id primitive.ObjectID) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if err := l.s.takeFailure(); err != nil {
		return err
	}
	if _, ok := l.s.listings[id]; !ok {
		return db.ErrNotFound
	}
	undo := undoFrom(ctx)
	undo.listing(l.s, id)
	undo.saveOrder(l.s)
	delete(l.s.listings, id)
	for i, oid := range l.s.order {
		if oid == id {
			l.s.order = append(l.s.order[:i], l.s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (l *Listings) PushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if err := l.s.takeFailure(); err != nil {
		return err
	}
	cur, ok := l.s.listings[listingID]
	if !ok {
		return db.ErrNotFound
	}
	undoFrom(ctx).listing(l.s, listingID)
	cur.Reviews = append(append([]primitive.ObjectID(nil), cur.Reviews...), reviewID)
	l.s.listings[listingID] = cur
	return nil
}

func (l *Listings) PullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if err := l.s.takeFailure(); err != nil {
		return err
	}
	cur, ok := l.s.listings[listingID]
	if !ok {
		return db.ErrNotFound
	}
	undoFrom(ctx).listing(l.s, listingID)
	cur.Reviews = without(cur.Reviews, map[primitive.ObjectID]struct{}{reviewID: {}})
	l.s.listings[listingID] = cur
	return nil
}

func (l *Listings) PullReviews(ctx context.Context, reviewIDs []primitive.ObjectID) (int64, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	drop := make(map[primitive.ObjectID]struct{}, len(reviewIDs))
	for _, id := range reviewIDs {
		drop[id] = struct{}{}
	}

	var modified int64
	for id, cur := range l.s.listings {
		kept := without(cur.Reviews, drop)
		if len(kept) != len(cur.Reviews) {
			undoFrom(ctx).listing(l.s, id)
			cur.Reviews = kept
			l.s.listings[id] = cur
			modified++
		}
	}
	return modified, nil
}

func (l *Listings) ReviewRefs(ctx context.Context) ([]primitive.ObjectID, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	seen := map[primitive.ObjectID]struct{}{}
	var refs []primitive.ObjectID
	for _, id := range l.s.order {
		for _, rid := range l.s.listings[id].Reviews {
			if _, ok := seen[rid]; !ok {
				seen[rid] = struct{}{}
				refs = append(refs, rid)
			}
		}
	}
	return refs, nil
}

func (l *Listings) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return append([]primitive.ObjectID(nil), l.s.order...), nil
}

type Reviews struct{ s *Store }

func (r *Reviews) Insert(ctx context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	undoFrom(ctx).review(r.s, review.ID)
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *Reviews) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	review, ok := r.s.reviews[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &review, nil
}

func (r *Reviews) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Review{}
	for _, id := range ids {
		if review, ok := r.s.reviews[id]; ok {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *Reviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.s.reviews[id]; !ok {
		return db.ErrNotFound
	}
	undoFrom(ctx).review(r.s, id)
	delete(r.s.reviews, id)
	return nil
}

func (r *Reviews) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	undo := undoFrom(ctx)
	var n int64
	for _, id := range ids {
		if _, ok := r.s.reviews[id]; ok {
			undo.review(r.s, id)
			delete(r.s.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *Reviews) Orphans(ctx context.Context, referenced, listingIDs []primitive.ObjectID, cutoff time.Time) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	refs := toSet(referenced)
	parents := toSet(listingIDs)

	var out []primitive.ObjectID
	for id, review := range r.s.reviews {
		if !review.CreatedAt.Before(cutoff) {
			continue
		}
		_, linked := refs[id]
		_, hasParent := parents[review.Listing]
		if !linked || !hasParent {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *Reviews) Existing(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []primitive.ObjectID{}
	for _, id := range ids {
		if _, ok := r.s.reviews[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type Users struct{ s *Store }

func (u *Users) Insert(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if err := u.s.takeFailure(); err != nil {
		return err
	}
	for _, existing := range u.s.users {
		if existing.Username == user.Username {
			return db.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	undoFrom(ctx).user(u.s, user.ID)
	u.s.users[user.ID] = *user
	return nil
}

func (u *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.Username == username {
			found := user
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (u *Users) UsernamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	names := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			names[id] = user.Username
		}
	}
	return names, nil
}

func clone(l models.Listing) models.Listing {
	l.Reviews = append([]primitive.ObjectID{}, l.Reviews...)
	return l
}

func without(ids []primitive.ObjectID, drop map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
