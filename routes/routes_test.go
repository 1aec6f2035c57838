package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"wanderlust/database/memory"
	middlewares "wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type app struct {
	store *memory.Store
	srv   *httptest.Server
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	m := memory.New()
	listings := services.NewListingService(m.Listings(), m.Reviews(), m.Users(), m, nil, log)
	reviews := services.NewReviewService(m.Listings(), m.Reviews(), m, nil, log)
	users := services.NewUserService(m.Users(), services.BcryptHasher{Cost: bcrypt.MinCost}, nil, log)

	srv := httptest.NewServer(NewRouter(Deps{
		Listings: listings,
		Reviews:  reviews,
		Users:    users,
		Sessions: middlewares.NewSessions("test-secret", time.Hour, false),
		Log:      log,
	}))
	t.Cleanup(srv.Close)

	return &app{store: m, srv: srv}
}

// browser keeps its own cookies and never follows redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *app) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: a.srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	Status   int
	Location string
	Body     string
}

func (b *browser) read(resp *http.Response, err error) page {
	b.t.Helper()
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	return b.read(b.client.Get(b.base + path))
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	return b.read(b.client.PostForm(b.base+path, form))
}

func (b *browser) signup(username string) {
	b.t.Helper()
	p := b.post("/signup", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret123"},
	})
	require.Equal(b.t, http.StatusFound, p.Status)
	require.Equal(b.t, "/listings", p.Location)
}

func listingForm(title string) url.Values {
	return url.Values{
		"listing[title]":       {title},
		"listing[description]": {"Quiet place in the hills"},
		"listing[price]":       {"1200"},
		"listing[location]":    {"Manali"},
		"listing[country]":     {"India"},
	}
}

func (a *app) onlyListing(t *testing.T) models.Listing {
	t.Helper()
	all, err := a.store.Listings().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	return all[0]
}

func TestRootRedirectsToListings(t *testing.T) {
	b := newApp(t).browser(t)

	p := b.get("/")
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)
}

func TestListingLifecycle(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")
	assert.Contains(t, b.get("/listings").Body, "Welcome to Wanderlust!")

	p := b.post("/listings", listingForm("Cabin"))
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)

	index := b.get("/listings")
	assert.Equal(t, http.StatusOK, index.Status)
	assert.Contains(t, index.Body, "New Listing Created!")
	assert.Contains(t, index.Body, "Cabin")
	assert.Contains(t, index.Body, "1,200")

	listing := a.onlyListing(t)
	id := listing.ID.Hex()
	assert.Equal(t, models.DefaultImage, listing.Image)
	assert.Empty(t, listing.Reviews)

	show := b.get("/listings/" + id)
	assert.Equal(t, http.StatusOK, show.Status)
	assert.Contains(t, show.Body, "Quiet place in the hills")
	assert.Contains(t, show.Body, "ana")

	assert.Equal(t, http.StatusOK, b.get("/listings/"+id+"/edit").Status)

	p = b.post("/listings/"+id+"?_method=PUT", listingForm("Lake Cabin"))
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/"+id, p.Location)
	show = b.get("/listings/" + id)
	assert.Contains(t, show.Body, "Listing Updated!")
	assert.Contains(t, show.Body, "Lake Cabin")

	p = b.post("/listings/"+id+"/reviews", url.Values{"review[rating]": {"5"}, "review[comment]": {"Loved it"}})
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/"+id, p.Location)
	show = b.get("/listings/" + id)
	assert.Contains(t, show.Body, "New Review Created!")
	assert.Contains(t, show.Body, "Loved it")
	assert.Equal(t, 1, a.store.ReviewCount())

	guest := a.browser(t)
	guest.signup("bob")
	p = guest.post("/listings/"+id+"/reviews", url.Values{"review[rating]": {"3"}, "review[comment]": {"A bit cold"}})
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, 2, a.store.ReviewCount())
	assert.Len(t, a.onlyListing(t).Reviews, 2)

	p = b.post("/listings/"+id+"?_method=DELETE", nil)
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)
	assert.Contains(t, b.get("/listings").Body, "Listing Deleted!")

	all, err := a.store.Listings().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, a.store.ReviewCount())

	p = b.get("/listings/" + id)
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)
	assert.Contains(t, b.get("/listings").Body, "Listing you requested for does not exist!")
}

func TestCreateListingWithOnlyRequiredFields(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")

	p := b.post("/listings", url.Values{
		"listing[title]":    {"Cabin"},
		"listing[price]":    {"100"},
		"listing[location]": {"X"},
		"listing[country]":  {"Y"},
	})
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)
	assert.Contains(t, b.get("/listings").Body, "Cabin")

	listing := a.onlyListing(t)
	assert.Empty(t, listing.Description)
	assert.Equal(t, 100.0, listing.Price)
}

func TestOutOfRangePriceIsRejected(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")

	form := listingForm("Cabin")
	form.Set("listing[price]", "1"+strings.Repeat("0", 400))
	p := b.post("/listings", form)

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "listing[price]")
	assert.NotContains(t, b.get("/listings").Body, "Inf")
}

func TestAnonymousWritesRedirectToLogin(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	p := b.post("/listings", listingForm("Cabin"))
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/login", p.Location)
	assert.Contains(t, b.get("/login").Body, "You must be logged in first!")

	all, err := a.store.Listings().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	p = b.get("/listings/new")
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/login", p.Location)
}

func TestNonOwnerCannotChangeListing(t *testing.T) {
	a := newApp(t)
	owner := a.browser(t)
	owner.signup("ana")
	require.Equal(t, http.StatusFound, owner.post("/listings", listingForm("Cabin")).Status)
	id := a.onlyListing(t).ID.Hex()

	other := a.browser(t)
	other.signup("bob")

	p := other.get("/listings/" + id + "/edit")
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/"+id, p.Location)
	assert.Contains(t, other.get("/listings/"+id).Body, "You are not the owner of this listing")

	p = other.post("/listings/"+id+"?_method=PUT", listingForm("Stolen"))
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "Cabin", a.onlyListing(t).Title)

	p = other.post("/listings/"+id+"?_method=DELETE", nil)
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/"+id, p.Location)
	a.onlyListing(t)
}

func TestOnlyAuthorDeletesReview(t *testing.T) {
	a := newApp(t)
	owner := a.browser(t)
	owner.signup("ana")
	require.Equal(t, http.StatusFound, owner.post("/listings", listingForm("Cabin")).Status)
	id := a.onlyListing(t).ID.Hex()

	guest := a.browser(t)
	guest.signup("bob")
	p := guest.post("/listings/"+id+"/reviews", url.Values{"review[rating]": {"4"}, "review[comment]": {"Nice view"}})
	require.Equal(t, http.StatusFound, p.Status)

	listing := a.onlyListing(t)
	require.Len(t, listing.Reviews, 1)
	reviewID := listing.Reviews[0].Hex()
	deletePath := "/listings/" + id + "/reviews/" + reviewID + "?_method=DELETE"

	p = owner.post(deletePath, nil)
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/"+id, p.Location)
	assert.Contains(t, owner.get("/listings/"+id).Body, "You are not the author of this review")
	assert.Equal(t, 1, a.store.ReviewCount())

	p = guest.post(deletePath, nil)
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Contains(t, guest.get("/listings/"+id).Body, "Review Deleted!")
	assert.Zero(t, a.store.ReviewCount())
	assert.Empty(t, a.onlyListing(t).Reviews)
}

func TestUnknownListingRedirects(t *testing.T) {
	b := newApp(t).browser(t)

	for _, id := range []string{"not-an-id", "64b7f0c2a1b2c3d4e5f60718"} {
		p := b.get("/listings/" + id)
		assert.Equal(t, http.StatusFound, p.Status, id)
		assert.Equal(t, "/listings", p.Location, id)
		assert.Contains(t, b.get("/listings").Body, "Listing you requested for does not exist!", id)
	}
}

func TestReviewOnMissingListing(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")

	p := b.post("/listings/64b7f0c2a1b2c3d4e5f60718/reviews", url.Values{"review[rating]": {"3"}, "review[comment]": {"Hmm"}})
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings", p.Location)
	assert.Zero(t, a.store.ReviewCount())
}

func TestInvalidListingIsRejected(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")

	form := listingForm("Cabin")
	form.Del("listing[title]")
	p := b.post("/listings", form)

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "listing[title]")

	all, err := a.store.Listings().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLoginLogout(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.signup("ana")

	p := b.get("/logout")
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Contains(t, b.get("/listings").Body, "You are logged out!")

	p = b.post("/listings", listingForm("Cabin"))
	assert.Equal(t, "/login", p.Location)

	p = b.post("/login", url.Values{"username": {"ana"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/login", p.Location)
	assert.Contains(t, b.get("/login").Body, "Invalid username or password")

	b.get("/listings/new")
	p = b.post("/login", url.Values{"username": {"ana"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/listings/new", p.Location)
	assert.Contains(t, b.get("/listings/new").Body, "Welcome back to Wanderlust!")
}

func TestDuplicateSignup(t *testing.T) {
	a := newApp(t)
	a.browser(t).signup("ana")

	b := a.browser(t)
	p := b.post("/signup", url.Values{"username": {"ana"}, "email": {"other@example.com"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/signup", p.Location)
	assert.Contains(t, b.get("/signup").Body, "already registered")
}

func TestUnknownRouteAndStatic(t *testing.T) {
	b := newApp(t).browser(t)

	p := b.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Body, "Page Not Found")

	assert.Equal(t, http.StatusOK, b.get("/static/css/style.css").Status)
}
