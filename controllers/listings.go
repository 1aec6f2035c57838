package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"wanderlust/gcs"
	middlewares "wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const imageFileField = "listing[imageFile]"

// ImageUploader stores an uploaded listing image and returns its URL.
type ImageUploader interface {
	Enabled() bool
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error)
}

type ListingController struct {
	listings *services.ListingService
	images   ImageUploader
	log      *zap.Logger
}

func NewListingController(listings *services.ListingService, images ImageUploader, log *zap.Logger) *ListingController {
	return &ListingController{listings: listings, images: images, log: log}
}

func (lc *ListingController) Index(c *gin.Context) {
	listings, err := lc.listings.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	views.Render(c, http.StatusOK, "listings/index", gin.H{"Title": "All Listings", "Listings": listings})
}

func (lc *ListingController) New(c *gin.Context) {
	views.Render(c, http.StatusOK, "listings/new", gin.H{"Title": "New Listing", "Listing": &models.Listing{}})
}

func (lc *ListingController) Show(c *gin.Context) {
	detail, err := lc.listings.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	views.Render(c, http.StatusOK, "listings/show", gin.H{"Title": detail.Title, "Listing": detail})
}

func (lc *ListingController) Create(c *gin.Context) {
	owner, _ := middlewares.CurrentUserID(c)
	in := middlewares.ListingInput(c)

	if err := lc.attachImage(c, &in); err != nil {
		c.Error(err)
		return
	}

	if _, err := lc.listings.Create(c.Request.Context(), owner, in); err != nil {
		c.Error(err)
		return
	}
	views.FlashSuccess(c, "New Listing Created!")
	c.Redirect(http.StatusFound, "/listings")
}

// Edit renders the form for the listing IsOwner already loaded.
func (lc *ListingController) Edit(c *gin.Context) {
	listing := middlewares.Listing(c)
	views.Render(c, http.StatusOK, "listings/edit", gin.H{"Title": "Edit " + listing.Title, "Listing": listing})
}

func (lc *ListingController) Update(c *gin.Context) {
	listing := middlewares.Listing(c)
	in := middlewares.ListingInput(c)

	if err := lc.attachImage(c, &in); err != nil {
		c.Error(err)
		return
	}

	if err := lc.listings.Update(c.Request.Context(), listing, in); err != nil {
		c.Error(err)
		return
	}
	views.FlashSuccess(c, "Listing Updated!")
	c.Redirect(http.StatusFound, "/listings/"+listing.ID.Hex())
}

func (lc *ListingController) Delete(c *gin.Context) {
	listing := middlewares.Listing(c)
	if err := lc.listings.Delete(c.Request.Context(), listing.ID); err != nil {
		c.Error(err)
		return
	}
	views.FlashSuccess(c, "Listing Deleted!")
	c.Redirect(http.StatusFound, "/listings")
}

// attachImage uploads listing[imageFile] when one was sent and points the
// listing at the stored copy.
func (lc *ListingController) attachImage(c *gin.Context, in *models.ListingInput) error {
	if lc.images == nil || !lc.images.Enabled() {
		return nil
	}
	header, err := c.FormFile(imageFileField)
	if err != nil || header.Size == 0 {
		return nil
	}

	file, err := header.Open()
	if err != nil {
		return utils.Internal(err)
	}
	defer file.Close()

	url, err := lc.images.Upload(c.Request.Context(), file, header.Header.Get("Content-Type"), "listings")
	if errors.Is(err, gcs.ErrUnsupportedImage) {
		return utils.Validation("listing image must be a PNG, JPEG, GIF or WEBP file")
	}
	if err != nil {
		lc.log.Error("image upload failed", zap.Error(err))
		return utils.Internal(err)
	}
	in.Image = url
	return nil
}
