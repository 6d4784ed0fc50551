package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	router      *gin.Engine
	productRepo *MockProductRepository
	orderRepo   *MockOrderRepository
	userRepo    *MockUserRepository
	token       string
	user        *identity.User
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	userRepo := new(MockUserRepository)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "checkout-test-secret-key-32-chars!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-test",
	})
	limiter := auth.NewLoginAttemptLimiter(5, time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, limiter, zap.NewNop())

	scope := orderapp.NewNoOpTransactionScope(productRepo, orderRepo)
	orderService := orderapp.NewOrderService(orderRepo, scope, zap.NewNop())

	orderHandler := NewOrderHandler(orderService, authService)

	user, err := identity.NewUser("Test Shopper", "shopper@example.com", "correct-horse")
	require.NoError(t, err)

	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	require.NoError(t, err)

	router := gin.New()
	authed := router.Group("/", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	authed.POST("/checkout", orderHandler.Checkout)

	return &checkoutFixture{
		router:      router,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		token:       token.AccessToken,
		user:        user,
	}
}

func (f *checkoutFixture) post(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("places an order", func(t *testing.T) {
		f := newCheckoutFixture(t)

		product, err := catalog.NewProduct(uuid.New(), "Wireless Bluetooth Headphones", "", decimal.RequireFromString("149.99"), 50)
		require.NoError(t, err)

		f.userRepo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)
		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.productRepo.On("DecrementStock", mock.Anything, product.ID, 2).Return(nil)
		f.orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		w := f.post(t, gin.H{
			"address": "1 Commerce St",
			"items": []gin.H{
				{"product_id": product.ID, "quantity": 2},
			},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "299.98")
		assert.Contains(t, w.Body.String(), f.user.Email)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("insufficient stock answers 400 naming the product", func(t *testing.T) {
		f := newCheckoutFixture(t)

		product, err := catalog.NewProduct(uuid.New(), "Wireless Bluetooth Headphones", "", decimal.RequireFromString("149.99"), 1)
		require.NoError(t, err)

		f.userRepo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)
		f.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		f.productRepo.On("DecrementStock", mock.Anything, product.ID, 3).Return(shared.ErrInsufficientStock)

		w := f.post(t, gin.H{
			"address": "1 Commerce St",
			"items": []gin.H{
				{"product_id": product.ID, "quantity": 3},
			},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Insufficient stock for product: Wireless Bluetooth Headphones")
		f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty cart is a validation error", func(t *testing.T) {
		f := newCheckoutFixture(t)

		w := f.post(t, gin.H{
			"address": "1 Commerce St",
			"items":   []gin.H{},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("zero quantity is a validation error", func(t *testing.T) {
		f := newCheckoutFixture(t)

		w := f.post(t, gin.H{
			"address": "1 Commerce St",
			"items": []gin.H{
				{"product_id": uuid.New(), "quantity": 0},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unauthenticated checkout is rejected", func(t *testing.T) {
		f := newCheckoutFixture(t)

		payload, err := json.Marshal(gin.H{
			"address": "1 Commerce St",
			"items": []gin.H{
				{"product_id": uuid.New(), "quantity": 1},
			},
		})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	scope := orderapp.NewNoOpTransactionScope(productRepo, orderRepo)
	orderService := orderapp.NewOrderService(orderRepo, scope, zap.NewNop())
	h := NewOrderHandler(orderService, nil)

	router := gin.New()
	router.GET("/admin/orders", h.List)

	orderRepo.On("FindAll", mock.Anything, mock.Anything).Return([]order.Order{}, nil)
	orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	req := httptest.NewRequest("GET", "/admin/orders?page=1&per_page=12", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"per_page":%d`, 12))
	assert.Contains(t, w.Body.String(), `"current_page":1`)
}
