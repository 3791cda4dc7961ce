package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
)

// ErrorHandler returns a Gin middleware that turns errors left on the Gin
// context into a response. JSON clients and /api routes get the
// {"error":{"code","message"}} envelope; browsers get the error page.
// Unexpected errors are logged and reported as a generic internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", GetRequestID(c),
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)
		}

		// A handler may have already written a body before failing.
		if c.Writer.Written() {
			return
		}
		RenderError(c, appErr.StatusCode, appErr.Code, appErr.Message)
	}
}

// Recovery logs a panic and answers with an internal error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Get().Errorw("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", GetRequestID(c),
		)
		RenderError(c, http.StatusInternalServerError, apperrors.ErrInternalServer.Code, apperrors.ErrInternalServer.Message)
		c.Abort()
	})
}

// RenderError writes an error response in the representation the client
// expects. The HTML form relies on an "error.html" template being loaded.
func RenderError(c *gin.Context, status int, code, message string) {
	if WantsJSON(c) {
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    code,
				"message": message,
			},
		})
		return
	}
	c.HTML(status, "error.html", gin.H{
		"Status":  status,
		"Code":    code,
		"Message": message,
	})
}

// WantsJSON reports whether the request targets the JSON API or explicitly
// prefers a JSON response.
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/health" {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
