package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperr.NotFound("order"), http.StatusNotFound, "order not found"},
		{"validation", apperr.Validation("bad quantity"), http.StatusBadRequest, "validation failed: bad quantity"},
		{"empty cart", fmt.Errorf("checkout: %w", apperr.ErrEmptyCart), http.StatusBadRequest, "checkout: validation failed: cart is empty"},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for raw, want := range map[string]bool{"42": true, "0": false, "-1": false, "abc": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		id, ok := idParam(c, "id")
		assert.Equal(t, want, ok, raw)
		if ok {
			assert.Equal(t, uint(42), id)
		} else {
			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		}
	}
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=500&page=x&n=7", nil)

	assert.Equal(t, 100, queryInt(c, "limit", 20, 100))
	assert.Equal(t, 1, queryInt(c, "page", 1, 0))
	assert.Equal(t, 7, queryInt(c, "n", 10, 50))
	assert.Equal(t, 10, queryInt(c, "missing", 10, 50))
}
