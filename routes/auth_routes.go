package routes

import (
	"wanderlust/controllers"
	middlewares "wanderlust/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(r *gin.Engine, d Deps) {
	users := controllers.NewUserController(d.Users, d.Sessions)

	login := []gin.HandlerFunc{}
	if d.LoginLimiter != nil {
		login = append(login, d.LoginLimiter.Middleware())
	}
	login = append(login, users.Login)

	r.GET("/signup", users.SignupForm)
	r.POST("/signup", users.Signup)
	r.GET("/login", users.LoginForm)
	r.POST("/login", login...)
	r.GET("/logout", users.Logout)
}

func SetupListingRoutes(r *gin.Engine, d Deps) {
	listings := controllers.NewListingController(d.Listings, d.Images, d.Log)
	isOwner := middlewares.IsOwner(d.Listings)

	g := r.Group("/listings")
	g.GET("", listings.Index)
	g.POST("", middlewares.RequireAuth(), middlewares.ValidateListing(), listings.Create)
	g.GET("/new", middlewares.RequireAuth(), listings.New)
	g.GET("/:id", listings.Show)
	g.GET("/:id/edit", middlewares.RequireAuth(), isOwner, listings.Edit)
	g.PUT("/:id", middlewares.RequireAuth(), isOwner, middlewares.ValidateListing(), listings.Update)
	g.DELETE("/:id", middlewares.RequireAuth(), isOwner, listings.Delete)
}

func SetupReviewRoutes(r *gin.Engine, d Deps) {
	reviews := controllers.NewReviewController(d.Reviews)

	g := r.Group("/listings/:id/reviews")
	g.POST("", middlewares.RequireAuth(), middlewares.ValidateReview(), reviews.Create)
	g.DELETE("/:reviewId", middlewares.RequireAuth(), middlewares.IsReviewAuthor(d.Reviews), reviews.Delete)
}
