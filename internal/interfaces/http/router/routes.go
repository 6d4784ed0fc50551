package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler the storefront exposes
type Handlers struct {
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	User     *handler.UserHandler
}

// AuthChain carries the authentication middleware the route tree needs
type AuthChain struct {
	// Authenticate validates the bearer token and loads the identity
	Authenticate gin.HandlerFunc
	// RequireAdmin gates the back office, must run after Authenticate
	RequireAdmin gin.HandlerFunc
}

// RegisterStorefrontRoutes wires the full storefront route tree:
// a public catalog, authenticated shopping, and an admin back office.
func RegisterStorefrontRoutes(r *Router, h Handlers, chain AuthChain) {
	// Public storefront
	catalog := NewDomainGroup("catalog", "")
	catalog.GET("/categories", h.Category.List)
	catalog.GET("/products", h.Product.List)
	catalog.GET("/products/:id", h.Product.GetByID)
	r.Register(catalog)

	// Authentication, registered at the API root
	auth := NewDomainGroup("auth", "")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", chain.Authenticate, h.Auth.Logout)
	auth.GET("/me", chain.Authenticate, h.Auth.Me)
	r.Register(auth)

	// Authenticated shopping
	shop := NewDomainGroup("shop", "")
	shop.Use(chain.Authenticate)
	shop.POST("/checkout", h.Order.Checkout)
	r.Register(shop)

	// Back office
	admin := NewDomainGroup("admin", "/admin")
	admin.Use(chain.Authenticate, chain.RequireAdmin)

	admin.GET("/categories", h.Category.List)
	admin.GET("/categories/:id", h.Category.GetByID)
	admin.POST("/categories", h.Category.Create)
	admin.PUT("/categories/:id", h.Category.Update)
	admin.DELETE("/categories/:id", h.Category.Delete)

	admin.GET("/products", h.Product.List)
	admin.GET("/products/:id", h.Product.GetByID)
	admin.POST("/products", h.Product.Create)
	admin.PUT("/products/:id", h.Product.Update)
	admin.DELETE("/products/:id", h.Product.Delete)
	admin.POST("/products/:id/image", h.Product.UploadImage)

	admin.GET("/orders", h.Order.List)
	admin.GET("/orders/:id", h.Order.GetByID)

	admin.GET("/users", h.User.List)
	admin.GET("/users/:id", h.User.GetByID)
	admin.POST("/users", h.User.Create)
	admin.PUT("/users/:id", h.User.Update)
	admin.DELETE("/users/:id", h.User.Delete)
	r.Register(admin)

	// System endpoints live inside the versioned API group too
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)
}

// RegisterHealthRoutes wires unversioned health probes on the engine root
func RegisterHealthRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/healthz", h.Health)
	engine.GET("/ready", h.Ready)
}
