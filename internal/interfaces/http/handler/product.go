package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// maxImageSize caps product image uploads at 5 MiB
const maxImageSize = 5 << 20

// ProductHandler handles product API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// ListProductsRequest represents the public catalog browse parameters
type ListProductsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	SortBy   string `form:"sort_by"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// List returns a page of the catalog, optionally filtered by category
// (ID or slug), search term and price range
func (h *ProductHandler) List(c *gin.Context) {
	var req ListProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	query := catalogapp.ListProductsQuery{
		Page:     req.Page,
		PerPage:  req.PerPage,
		Search:   req.Search,
		Category: req.Category,
		SortBy:   req.SortBy,
		SortDir:  req.SortDir,
	}

	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			h.BadRequest(c, "Invalid min_price")
			return
		}
		query.MinPrice = &min
	}
	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			h.BadRequest(c, "Invalid max_price")
			return
		}
		query.MaxPrice = &max
	}

	page, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Page(c, page)
}

// GetByID returns a single product with its category
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.BindID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update updates an existing product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.BindID(c)
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.BindID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UploadImage attaches an image to a product. The file is stored in
// object storage and the product's image URL is updated.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.BindID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "Missing image file")
		return
	}
	if fileHeader.Size > maxImageSize {
		h.BadRequest(c, "Image exceeds maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	if len(data) > maxImageSize {
		h.BadRequest(c, "Image exceeds maximum allowed size")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	product, err := h.productService.UploadImage(c.Request.Context(), id, fileHeader.Filename, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
