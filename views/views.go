package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	userIDKey   = "user_id"
	usernameKey = "username"

	flashSuccess = "flash_success"
	flashError   = "flash_error"
)

var funcs = template.FuncMap{
	"price": formatPrice,
	"stars": func(n int) string {
		if n < 0 || n > 5 {
			return ""
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}

// Templates parses every page and partial into one set.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Static serves the embedded css and images.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Render executes a page with the session user and pending flash messages added to data.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	id, username, ok := CurrentUser(c)
	data["LoggedIn"] = ok
	data["CurrentUserID"] = id
	data["CurrentUsername"] = username
	data["Success"] = takeFlash(c, flashSuccess)
	data["Error"] = takeFlash(c, flashError)
	c.HTML(status, name, data)
}

// SetCurrentUser records the authenticated user for the rest of the request.
func SetCurrentUser(c *gin.Context, id, username string) {
	c.Set(userIDKey, id)
	c.Set(usernameKey, username)
}

// CurrentUser returns the hex id and name of the session user, if any.
func CurrentUser(c *gin.Context) (id, username string, ok bool) {
	id = c.GetString(userIDKey)
	return id, c.GetString(usernameKey), id != ""
}

// FlashSuccess queues a success banner for the next rendered page.
func FlashSuccess(c *gin.Context, msg string) {
	c.SetCookie(flashSuccess, msg, 300, "/", "", false, true)
}

// FlashError queues an error banner for the next rendered page.
func FlashError(c *gin.Context, msg string) {
	c.SetCookie(flashError, msg, 300, "/", "", false, true)
}

func takeFlash(c *gin.Context, name string) string {
	msg, err := c.Cookie(name)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(name, "", -1, "/", "", false, true)
	return msg
}
