package controllers

import (
	"net/http"

	middlewares "wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/views"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	users    *services.UserService
	sessions *middlewares.Sessions
}

func NewUserController(users *services.UserService, sessions *middlewares.Sessions) *UserController {
	return &UserController{users: users, sessions: sessions}
}

func (uc *UserController) SignupForm(c *gin.Context) {
	views.Render(c, http.StatusOK, "users/signup", gin.H{"Title": "Sign Up"})
}

func (uc *UserController) Signup(c *gin.Context) {
	var in models.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		c.Error(utils.Validation(utils.ValidationMessage(err)).WithRedirect("/signup"))
		return
	}

	user, err := uc.users.Register(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}

	if err := uc.sessions.Login(c, user); err != nil {
		c.Error(utils.Internal(err))
		return
	}
	views.FlashSuccess(c, "Welcome to Wanderlust!")
	c.Redirect(http.StatusFound, "/listings")
}

func (uc *UserController) LoginForm(c *gin.Context) {
	views.Render(c, http.StatusOK, "users/login", gin.H{"Title": "Login"})
}

func (uc *UserController) Login(c *gin.Context) {
	var in models.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		c.Error(utils.Unauthenticated(services.InvalidCredentialsMessage))
		return
	}

	user, err := uc.users.Authenticate(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}

	if err := uc.sessions.Login(c, user); err != nil {
		c.Error(utils.Internal(err))
		return
	}
	views.FlashSuccess(c, "Welcome back to Wanderlust!")
	c.Redirect(http.StatusFound, middlewares.TakeRedirect(c, "/listings"))
}

func (uc *UserController) Logout(c *gin.Context) {
	uc.sessions.Logout(c)
	views.FlashSuccess(c, "You are logged out!")
	c.Redirect(http.StatusFound, "/listings")
}
