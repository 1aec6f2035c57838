package routes

import (
	"net/http"
	"time"

	"wanderlust/controllers"
	middlewares "wanderlust/middleware"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/views"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the router hands out to controllers and middleware.
type Deps struct {
	Listings       *services.ListingService
	Reviews        *services.ReviewService
	Users          *services.UserService
	Sessions       *middlewares.Sessions
	Images         controllers.ImageUploader
	LoginLimiter   *middlewares.RateLimiter
	AllowedOrigins []string
	Log            *zap.Logger
}

// NewRouter builds the gin engine and wraps it with method override so HTML
// forms can reach the PUT and DELETE routes.
func NewRouter(d Deps) http.Handler {
	utils.UseFormFieldNames()

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}

	r := gin.New()
	r.Use(middlewares.Recovery(d.Log))
	r.Use(middlewares.Logger(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.HandleErrors(d.Log))
	r.Use(d.Sessions.LoadUser())

	r.SetHTMLTemplate(views.Templates())
	r.StaticFS("/static", views.Static())

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/listings")
	})

	SetupListingRoutes(r, d)
	SetupReviewRoutes(r, d)
	SetupAuthRoutes(r, d)

	r.NoRoute(middlewares.NotFound)

	return middlewares.MethodOverride(r)
}
