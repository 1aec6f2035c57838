package middlewares

import (
	"wanderlust/models"
	"wanderlust/utils"

	"github.com/gin-gonic/gin"
)

const (
	listingInputKey = "listing_input"
	reviewInputKey  = "review_input"
)

// ValidateListing binds the listing[...] body and rejects it with a 400 when
// it does not satisfy the schema.
func ValidateListing() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.ListingInput
		if err := c.ShouldBind(&in); err != nil {
			c.Error(utils.Validation(utils.ValidationMessage(err)))
			c.Abort()
			return
		}
		if _, err := in.ParsePrice(); err != nil {
			c.Error(utils.Validation(err.Error()))
			c.Abort()
			return
		}
		c.Set(listingInputKey, in)
		c.Next()
	}
}

// ValidateReview binds the review[...] body.
func ValidateReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.ReviewInput
		if err := c.ShouldBind(&in); err != nil {
			c.Error(utils.Validation(utils.ValidationMessage(err)))
			c.Abort()
			return
		}
		c.Set(reviewInputKey, in)
		c.Next()
	}
}

func ListingInput(c *gin.Context) models.ListingInput {
	v, _ := c.Get(listingInputKey)
	in, _ := v.(models.ListingInput)
	return in
}

func ReviewInput(c *gin.Context) models.ReviewInput {
	v, _ := c.Get(reviewInputKey)
	in, _ := v.(models.ReviewInput)
	return in
}
