package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	c "github.com/reoring/constraint"
	"github.com/reoring/constraint/middleware"
	ginmw "github.com/reoring/constraint/middleware/gin"
)

func TestValidateJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := c.NewRecord("Item").Field("qty", c.Integer(), c.ConstraintSpec{c.MinValue: 1})
	r := gin.New()
	r.POST("/items", ginmw.ValidateJSON(c.New(), s, middleware.DefaultOptions()), func(ctx *gin.Context) {
		v, ok := ginmw.GetValue(ctx)
		if !ok {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		q, _ := v.Get("qty")
		n, _ := q.Int()
		ctx.JSON(http.StatusOK, gin.H{"qty": n})
	})

	for _, tc := range []struct {
		body string
		code int
	}{
		{`{"qty": 2}`, http.StatusOK},
		{`{"qty": 0}`, http.StatusUnprocessableEntity},
		{`{"qty": "two"}`, http.StatusUnprocessableEntity},
		{`{"qty": `, http.StatusBadRequest},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(tc.body)))
		assert.Equal(t, tc.code, rec.Code, tc.body)
	}
}
