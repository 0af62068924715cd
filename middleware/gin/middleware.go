package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
	"github.com/reoring/constraint/middleware"
)

// ValidateJSON validates the request body against s and stores the value in the
// request context. Malformed bodies get 400 and violations 422.
func ValidateJSON(v *constraint.Validator, s *constraint.RecordSchema, opt decode.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, status, body := middleware.Check(c.Request, v, s, opt)
		if status != 0 {
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), val))
		c.Next()
	}
}

// GetValue fetches the validated value from gin.Context.
func GetValue(c *gin.Context) (constraint.Value, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}
