package models

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultImage is shown for listings saved without an image URL.
const DefaultImage = "https://plus.unsplash.com/premium_photo-1664474619075-644dd191935f?fm=jpg&q=60&w=3000&ixlib=rb-4.1.0&ixid=M3wxMjA3fDB8MHxzZWFyY2h8MXx8aW1hZ2V8ZW58MHx8MHx8fDA%3D"

type Listing struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Image       string               `json:"image" bson:"image"`
	Price       float64              `json:"price" bson:"price"`
	Location    string               `json:"location" bson:"location"`
	Country     string               `json:"country" bson:"country"`
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews"`
	Owner       primitive.ObjectID   `json:"owner" bson:"owner"`
}

// SetImage stores url, falling back to DefaultImage when it is blank.
func (l *Listing) SetImage(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultImage
	}
	l.Image = url
}

// IsOwnedBy reports whether userID recorded this listing.
func (l *Listing) IsOwnedBy(userID primitive.ObjectID) bool {
	return !l.Owner.IsZero() && l.Owner == userID
}

// HasReview reports whether reviewID is referenced by the listing.
func (l *Listing) HasReview(reviewID primitive.ObjectID) bool {
	for _, id := range l.Reviews {
		if id == reviewID {
			return true
		}
	}
	return false
}

// ListingInput is the listing[...] form body accepted by create and update.
type ListingInput struct {
	Title       string `form:"listing[title]" json:"title" binding:"required"`
	Description string `form:"listing[description]" json:"description"`
	Image       string `form:"listing[image]" json:"image" binding:"omitempty,url"`
	Price       string `form:"listing[price]" json:"price" binding:"required,numeric,excludes=-"`
	Location    string `form:"listing[location]" json:"location" binding:"required"`
	Country     string `form:"listing[country]" json:"country" binding:"required"`
}

// ErrInvalidPrice is returned for prices that are negative or do not fit a float64.
var ErrInvalidPrice = errors.New(`"listing[price]" must be a finite number greater than or equal to 0`)

// ParsePrice converts the submitted price.
func (in ListingInput) ParsePrice() (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) || price < 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

// Apply copies the validated input onto l. Reviews and Owner are left alone,
// and l is untouched when the price does not parse.
func (in ListingInput) Apply(l *Listing) error {
	price, err := in.ParsePrice()
	if err != nil {
		return err
	}
	l.Title = strings.TrimSpace(in.Title)
	l.Description = strings.TrimSpace(in.Description)
	l.SetImage(in.Image)
	l.Price = price
	l.Location = strings.TrimSpace(in.Location)
	l.Country = strings.TrimSpace(in.Country)
	return nil
}

// ListingDetail is a listing with its reviews and owner resolved for display.
type ListingDetail struct {
	Listing
	OwnerName string
	Reviews   []ReviewDetail
}
