package memory

import (
	"context"

	"wanderlust/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// prior is a document as it was before a transaction first touched it.
type prior[T any] struct {
	value   T
	existed bool
}

// undoLog records what a transaction overwrote. Methods are called with
// Store.mu held and are no-ops on a nil log, which is what writes outside a
// transaction get.
type undoLog struct {
	listings   map[primitive.ObjectID]prior[models.Listing]
	reviews    map[primitive.ObjectID]prior[models.Review]
	users      map[primitive.ObjectID]prior[models.User]
	order      []primitive.ObjectID
	orderSaved bool
}

func newUndoLog() *undoLog {
	return &undoLog{
		listings: map[primitive.ObjectID]prior[models.Listing]{},
		reviews:  map[primitive.ObjectID]prior[models.Review]{},
		users:    map[primitive.ObjectID]prior[models.User]{},
	}
}

func undoFrom(ctx context.Context) *undoLog {
	u, _ := ctx.Value(txKey{}).(*undoLog)
	return u
}

func (u *undoLog) listing(s *Store, id primitive.ObjectID) {
	if u == nil {
		return
	}
	if _, seen := u.listings[id]; seen {
		return
	}
	cur, ok := s.listings[id]
	u.listings[id] = prior[models.Listing]{value: clone(cur), existed: ok}
}

func (u *undoLog) saveOrder(s *Store) {
	if u == nil || u.orderSaved {
		return
	}
	u.order = append([]primitive.ObjectID(nil), s.order...)
	u.orderSaved = true
}

func (u *undoLog) review(s *Store, id primitive.ObjectID) {
	if u == nil {
		return
	}
	if _, seen := u.reviews[id]; seen {
		return
	}
	cur, ok := s.reviews[id]
	u.reviews[id] = prior[models.Review]{value: cur, existed: ok}
}

func (u *undoLog) user(s *Store, id primitive.ObjectID) {
	if u == nil {
		return
	}
	if _, seen := u.users[id]; seen {
		return
	}
	cur, ok := s.users[id]
	u.users[id] = prior[models.User]{value: cur, existed: ok}
}

func (u *undoLog) revert(s *Store) {
	for id, p := range u.listings {
		if p.existed {
			s.listings[id] = p.value
		} else {
			delete(s.listings, id)
		}
	}
	for id, p := range u.reviews {
		if p.existed {
			s.reviews[id] = p.value
		} else {
			delete(s.reviews, id)
		}
	}
	for id, p := range u.users {
		if p.existed {
			s.users[id] = p.value
		} else {
			delete(s.users, id)
		}
	}
	if u.orderSaved {
		s.order = restoreOrder(u.order, s.order, s.listings)
	}
}

// restoreOrder puts listings back in their pre-transaction order, followed by
// listings other callers added meanwhile.
func restoreOrder(saved, current []primitive.ObjectID, listings map[primitive.ObjectID]models.Listing) []primitive.ObjectID {
	order := make([]primitive.ObjectID, 0, len(listings))
	seen := make(map[primitive.ObjectID]struct{}, len(listings))
	for _, ids := range [][]primitive.ObjectID{saved, current} {
		for _, id := range ids {
			if _, ok := listings[id]; !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}
	return order
}
