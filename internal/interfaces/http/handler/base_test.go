package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	base := &BaseHandler{}
	router.GET("/fail", func(c *gin.Context) {
		base.HandleError(c, err)
	})

	req := httptest.NewRequest("GET", "/fail", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBaseHandler_HandleError(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		w := performWithError(t, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})

	t.Run("insufficient stock maps to 400", func(t *testing.T) {
		w := performWithError(t, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for product: Desk Lamp"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Desk Lamp")
	})

	t.Run("duplicate resource maps to 422", func(t *testing.T) {
		w := performWithError(t, shared.ErrAlreadyExists)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("category with products maps to 422", func(t *testing.T) {
		w := performWithError(t, shared.NewDomainError("HAS_PRODUCTS", "Cannot delete category with associated products"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeHasProducts)
	})

	t.Run("invalid credentials map to 401", func(t *testing.T) {
		w := performWithError(t, shared.ErrInvalidCredentials)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("throttled login maps to 429 with retry hint", func(t *testing.T) {
		w := performWithError(t, &identityapp.RateLimitedError{RetryAfter: 90 * time.Second})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "90", w.Header().Get("Retry-After"))

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
		assert.Equal(t, 90, resp.Error.RetryAfter)
		assert.Equal(t, "Too many login attempts. Please try again later.", resp.Error.Message)
	})

	t.Run("unknown error maps to 500", func(t *testing.T) {
		w := performWithError(t, errors.New("connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInternal)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}
