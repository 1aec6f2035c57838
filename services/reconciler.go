package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// orphanGrace keeps the reconciler away from reviews whose listing link is still being written.
const orphanGrace = 5 * time.Minute

type ReconcileReport struct {
	DanglingRefs   int64
	OrphansDeleted int64
}

// Reconciler repairs drift between listings.reviews and the reviews collection
// left behind when a two-step write fails half way.
type Reconciler struct {
	listings ListingStore
	reviews  ReviewStore
	log      *zap.Logger
	now      func() time.Time
}

func NewReconciler(listings ListingStore, reviews ReviewStore, log *zap.Logger) *Reconciler {
	return &Reconciler{listings: listings, reviews: reviews, log: log, now: time.Now}
}

func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	refs, err := r.listings.ReviewRefs(ctx)
	if err != nil {
		return report, err
	}

	existing, err := r.reviews.Existing(ctx, refs)
	if err != nil {
		return report, err
	}

	if dangling := difference(refs, existing); len(dangling) > 0 {
		if report.DanglingRefs, err = r.listings.PullReviews(ctx, dangling); err != nil {
			return report, err
		}
	}

	listingIDs, err := r.listings.IDs(ctx)
	if err != nil {
		return report, err
	}

	orphans, err := r.reviews.Orphans(ctx, existing, listingIDs, r.now().Add(-orphanGrace))
	if err != nil {
		return report, err
	}
	if report.OrphansDeleted, err = r.reviews.DeleteMany(ctx, orphans); err != nil {
		return report, err
	}

	return report, nil
}

// Schedule registers Run on a cron spec and starts the scheduler.
func (r *Reconciler) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		report, err := r.Run(ctx)
		if err != nil {
			r.log.Error("reconcile failed", zap.Error(err))
			return
		}
		r.log.Info("reconcile finished",
			zap.Int64("dangling_refs", report.DanglingRefs),
			zap.Int64("orphans_deleted", report.OrphansDeleted))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconciler %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

func difference(all, keep []primitive.ObjectID) []primitive.ObjectID {
	kept := make(map[primitive.ObjectID]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	var out []primitive.ObjectID
	for _, id := range all {
		if _, ok := kept[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
