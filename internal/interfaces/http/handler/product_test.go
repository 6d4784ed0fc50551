package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductTestRouter(t *testing.T) (*gin.Engine, *MockProductRepository, *MockCategoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	service := catalogapp.NewProductService(productRepo, categoryRepo, nil)
	h := NewProductHandler(service)

	router := gin.New()
	router.GET("/products", h.List)
	router.GET("/products/:id", h.GetByID)
	return router, productRepo, categoryRepo
}

func TestProductHandler_List(t *testing.T) {
	t.Run("returns a paginated catalog page", func(t *testing.T) {
		router, productRepo, _ := newProductTestRouter(t)

		category, err := catalog.NewCategory("Electronics", "")
		require.NoError(t, err)
		product, err := catalog.NewProduct(category.ID, "Wireless Bluetooth Headphones", "", decimal.RequireFromString("149.99"), 50)
		require.NoError(t, err)

		productRepo.On("FindAll", mock.Anything, mock.Anything).Return([]catalog.Product{*product}, nil)
		productRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

		req := httptest.NewRequest("GET", "/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "wireless-bluetooth-headphones")
		assert.Contains(t, w.Body.String(), `"per_page":12`)
		assert.Contains(t, w.Body.String(), `"total":1`)
	})

	t.Run("filters by category slug", func(t *testing.T) {
		router, productRepo, categoryRepo := newProductTestRouter(t)

		category, err := catalog.NewCategory("Home & Garden", "")
		require.NoError(t, err)

		categoryRepo.On("FindBySlug", mock.Anything, "home-garden").Return(category, nil)
		productRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["category_id"] == category.ID
		})).Return([]catalog.Product{}, nil)
		productRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		req := httptest.NewRequest("GET", "/products?category=home-garden", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		productRepo.AssertExpectations(t)
	})

	t.Run("rejects malformed price bounds", func(t *testing.T) {
		router, _, _ := newProductTestRouter(t)

		req := httptest.NewRequest("GET", "/products?min_price=cheap", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "min_price")
	})

	t.Run("rejects invalid sort direction", func(t *testing.T) {
		router, _, _ := newProductTestRouter(t)

		req := httptest.NewRequest("GET", "/products?sort_dir=sideways", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	t.Run("malformed id answers 400", func(t *testing.T) {
		router, _, _ := newProductTestRouter(t)

		req := httptest.NewRequest("GET", "/products/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product answers 404", func(t *testing.T) {
		router, productRepo, _ := newProductTestRouter(t)

		productRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		req := httptest.NewRequest("GET", "/products/550e8400-e29b-41d4-a716-446655440000", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
