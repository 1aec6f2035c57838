package middlewares

import (
	"net/http"
	"time"

	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/views"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	sessionCookie  = "token"
	redirectCookie = "redirect_to"

	listingKey = "listing"
	reviewKey  = "review"
)

// Sessions issues and reads the signed session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Login starts a session for user.
func (s *Sessions) Login(c *gin.Context, user *models.User) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
		"exp":      time.Now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	views.SetCurrentUser(c, user.ID.Hex(), user.Username)
	return nil
}

func (s *Sessions) Logout(c *gin.Context) {
	s.clear(c)
	views.SetCurrentUser(c, "", "")
}

func (s *Sessions) clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadUser reads the session cookie on every request. Requests without a
// valid session continue anonymously.
func (s *Sessions) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(sessionCookie)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			s.clear(c)
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			s.clear(c)
			c.Next()
			return
		}
		userID, _ := claims["user_id"].(string)
		username, _ := claims["username"].(string)
		if _, err := primitive.ObjectIDFromHex(userID); err != nil {
			s.clear(c)
			c.Next()
			return
		}

		views.SetCurrentUser(c, userID, username)
		c.Next()
	}
}

// TakeRedirect returns the page remembered before the login detour, or fallback.
func TakeRedirect(c *gin.Context, fallback string) string {
	path, err := c.Cookie(redirectCookie)
	if err != nil || path == "" || path[0] != '/' || (len(path) > 1 && path[1] == '/') {
		return fallback
	}
	c.SetCookie(redirectCookie, "", -1, "/", "", false, true)
	return path
}

// CurrentUserID returns the session user's id.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, _, ok := views.CurrentUser(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// RequireAuth stops anonymous requests and sends them to the login page,
// remembering where they were headed.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); ok {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet {
			c.SetCookie(redirectCookie, c.Request.URL.RequestURI(), 600, "/", "", false, true)
		}
		c.Error(utils.Unauthenticated("You must be logged in first!"))
		c.Abort()
	}
}

// IsOwner loads the :id listing and lets only its owner through. The loaded
// listing is available to handlers via Listing.
func IsOwner(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := listings.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		userID, _ := CurrentUserID(c)
		if !listing.IsOwnedBy(userID) {
			c.Error(utils.Forbidden("You are not the owner of this listing", "/listings/"+listing.ID.Hex()))
			c.Abort()
			return
		}

		c.Set(listingKey, listing)
		c.Next()
	}
}

// IsReviewAuthor loads the :reviewId review and lets only its author through.
func IsReviewAuthor(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		back := "/listings/" + c.Param("id")
		review, err := reviews.Get(c.Request.Context(), c.Param("reviewId"), back)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		if review.Listing.Hex() != c.Param("id") {
			c.Error(utils.NotFound("Review you requested for does not exist!", back))
			c.Abort()
			return
		}

		userID, _ := CurrentUserID(c)
		if !review.IsAuthoredBy(userID) {
			c.Error(utils.Forbidden("You are not the author of this review", back))
			c.Abort()
			return
		}

		c.Set(reviewKey, review)
		c.Next()
	}
}

// Listing returns the listing loaded by IsOwner.
func Listing(c *gin.Context) *models.Listing {
	v, _ := c.Get(listingKey)
	l, _ := v.(*models.Listing)
	return l
}

// Review returns the review loaded by IsReviewAuthor.
func Review(c *gin.Context) *models.Review {
	v, _ := c.Get(reviewKey)
	r, _ := v.(*models.Review)
	return r
}
