package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type priceRequest struct {
	Amount string `json:"amount" binding:"required,decimalstring"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req priceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, req.Amount)
	})
	return router
}

func TestDecimalString_Valid(t *testing.T) {
	router := newValidationRouter()

	for _, amount := range []string{"29.99", "0", "0.01", "1000"} {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"amount":"`+amount+`"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "amount %q should be accepted", amount)
	}
}

func TestDecimalString_Invalid(t *testing.T) {
	router := newValidationRouter()

	for _, amount := range []string{"abc", "-29.99", "1.2.3", ""} {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"amount":"`+amount+`"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q should be rejected", amount)
	}
}
