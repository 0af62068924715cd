package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
	"github.com/reoring/constraint/middleware"
)

// ValidateJSON validates the request body against s, stores the value in the request
// context on success, or answers 400 for malformed bodies and 422 for violations.
func ValidateJSON(v *constraint.Validator, s *constraint.RecordSchema, opt decode.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			val, status, body := middleware.Check(c.Request(), v, s, opt)
			if status != 0 {
				return c.JSON(status, body)
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithValue(c.Request().Context(), val)))
			return next(c)
		}
	}
}

// GetValue fetches the validated value from echo.Context.
func GetValue(c echo.Context) (constraint.Value, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}
