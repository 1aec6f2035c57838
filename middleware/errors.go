package middlewares

import (
	"net/http"

	"wanderlust/utils"
	"wanderlust/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleErrors turns the last error attached to the context into a response.
// Errors carrying a redirect flash their message and send the browser there.
// Everything else, and every internal error, renders the error page.
func HandleErrors(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := utils.AsAppError(c.Errors.Last().Err)
		if appErr.Kind == utils.KindInternal {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(appErr))
		}

		if appErr.Redirect != "" && appErr.Kind != utils.KindInternal {
			views.FlashError(c, appErr.Message)
			c.Redirect(http.StatusFound, appErr.Redirect)
			return
		}

		RenderError(c, appErr.Kind.Status(), appErr.Message)
	}
}

func RenderError(c *gin.Context, status int, message string) {
	views.Render(c, status, "error", gin.H{"Title": "Error", "Status": status, "Message": message})
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	c.Error(utils.NewError(utils.KindNotFound, "Page Not Found"))
}

// Recovery renders the generic error page after a panic.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		RenderError(c, http.StatusInternalServerError, "Something went wrong")
		c.Abort()
	})
}
