package controllers

import (
	"net/http"

	middlewares "wanderlust/middleware"
	"wanderlust/services"
	"wanderlust/views"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (rc *ReviewController) Create(c *gin.Context) {
	author, _ := middlewares.CurrentUserID(c)
	listingID := c.Param("id")

	if _, err := rc.reviews.Create(c.Request.Context(), listingID, author, middlewares.ReviewInput(c)); err != nil {
		c.Error(err)
		return
	}
	views.FlashSuccess(c, "New Review Created!")
	c.Redirect(http.StatusFound, "/listings/"+listingID)
}

func (rc *ReviewController) Delete(c *gin.Context) {
	review := middlewares.Review(c)

	if err := rc.reviews.Delete(c.Request.Context(), review.Listing, review.ID); err != nil {
		c.Error(err)
		return
	}
	views.FlashSuccess(c, "Review Deleted!")
	c.Redirect(http.StatusFound, "/listings/"+review.Listing.Hex())
}
