package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// OrderHandler handles checkout and order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
	authService  *identityapp.AuthService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, authService *identityapp.AuthService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authService:  authService,
	}
}

// Checkout places an order for the authenticated user. Name and email
// are snapshotted onto the order so it survives account changes.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input orderapp.CheckoutInput
	if !h.BindJSON(c, &input) {
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	input.UserID = user.ID
	input.UserName = user.Name
	input.UserEmail = user.Email

	order, err := h.orderService.Checkout(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// List returns a page of orders for back office review
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), orderapp.ListOrdersQuery{
		Page:    req.Page,
		PerPage: req.PerPage,
		Search:  req.Search,
		SortBy:  req.SortBy,
		SortDir: req.SortDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Page(c, page)
}

// GetByID returns a single order with its items
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.BindID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
