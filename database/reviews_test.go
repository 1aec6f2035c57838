package db

import (
	"testing"

	"wanderlust/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderByIDsFollowsListingOrder(t *testing.T) {
	first, second, third := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	missing := primitive.NewObjectID()

	found := []models.Review{{ID: third}, {ID: first}, {ID: second}}
	got := orderByIDs(found, []primitive.ObjectID{second, missing, first, third})

	ids := make([]primitive.ObjectID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []primitive.ObjectID{second, first, third}, ids)
}
