package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Listing   primitive.ObjectID `json:"listing" bson:"listing"` // parent listing
	Author    primitive.ObjectID `json:"author" bson:"author"`   // user who wrote it
	Rating    int                `json:"rating" bson:"rating"`   // 1-5
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// IsAuthoredBy reports whether userID wrote the review.
func (r *Review) IsAuthoredBy(userID primitive.ObjectID) bool {
	return !r.Author.IsZero() && r.Author == userID
}

type ReviewInput struct {
	Rating  int    `form:"review[rating]" json:"rating" binding:"required,min=1,max=5"`
	Comment string `form:"review[comment]" json:"comment" binding:"required"`
}

func (in ReviewInput) Review(listingID, authorID primitive.ObjectID) Review {
	return Review{
		Listing:   listingID,
		Author:    authorID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now(),
	}
}

// ReviewDetail carries the author's username for display.
type ReviewDetail struct {
	Review
	AuthorName string
}
