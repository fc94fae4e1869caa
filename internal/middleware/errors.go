package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"account_service/internal/apperror"
)

// ErrorHandler renders errors attached to the context by controllers.
// Typed domain errors map to their own HTTP status and the stable
// {code, message, status, details} body; anything else is an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			details := appErr.Details
			if details == nil {
				details = []any{}
			}
			c.JSON(appErr.Code.HTTPStatus(), gin.H{
				"error": gin.H{
					"code":    appErr.Code.HTTPStatus(),
					"message": appErr.Error(),
					"status":  appErr.Code.Status(),
					"details": details,
				},
			})
			return
		}

		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error.",
				"status":  "INTERNAL",
				"details": []any{},
			},
		})
	}
}
