package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ObjectStorageService
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ObjectStorageService,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
	}
}

// List retrieves products for the public catalog. The category parameter
// accepts either a category ID or a slug; a value that resolves to neither
// leaves the listing unrestricted.
func (s *ProductService) List(ctx context.Context, query ListProductsQuery) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = query.SortBy
	filter.OrderDir = query.SortDir
	filter.Search = query.Search
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PerPage > 0 {
		filter.PageSize = query.PerPage
	}

	if query.Category != "" {
		if categoryID, ok := s.resolveCategory(ctx, query.Category); ok {
			filter.Filters["category_id"] = categoryID
		}
	}
	if query.MinPrice != nil {
		filter.Filters["min_price"] = *query.MinPrice
	}
	if query.MaxPrice != nil {
		filter.Filters["max_price"] = *query.MaxPrice
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *ToProductResponse(&products[i])
	}

	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// resolveCategory maps an ID-or-slug value to a category ID
func (s *ProductService) resolveCategory(ctx context.Context, value string) (uuid.UUID, bool) {
	if id, err := uuid.Parse(value); err == nil {
		return id, true
	}

	category, err := s.categoryRepo.FindBySlug(ctx, value)
	if err != nil {
		return uuid.Nil, false
	}
	return category.ID, true
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return ToProductResponse(product), nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}

	product, err := catalog.NewProduct(req.CategoryID, req.Name, req.Description, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return ToProductResponse(product), nil
}

// Update updates an existing product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
	}

	if err := product.Update(req.CategoryID, req.Name, req.Description, req.Price, req.Stock); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return ToProductResponse(product), nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// UploadImage stores a product image and records its public URL
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	storageKey := fmt.Sprintf("products/%s/%s", product.ID, path.Base(filename))
	if err := s.storage.Upload(ctx, storageKey, data, contentType); err != nil {
		return nil, err
	}

	if err := product.SetImage(s.storage.PublicURL(storageKey)); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return ToProductResponse(product), nil
}
