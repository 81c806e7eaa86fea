package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
)

// RequireVerifiedEmail rejects callers whose access token was issued before
// their email address was verified. It must run after AuthMiddleware.
func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextEmailVerified) {
			abortWithError(c, apperrors.ErrEmailNotVerified)
			return
		}
		c.Next()
	}
}
