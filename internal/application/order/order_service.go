package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutMetrics receives checkout outcomes. Implemented by the telemetry
// layer; a nil value disables recording.
type CheckoutMetrics interface {
	RecordOrderPlaced(ctx context.Context, itemCount int, total float64)
	RecordCheckoutRejected(ctx context.Context, reason string)
}

// OrderService handles checkout and order queries
type OrderService struct {
	orderRepo order.OrderRepository
	scope     TransactionScope
	logger    *zap.Logger
	metrics   CheckoutMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository, scope TransactionScope, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		scope:     scope,
		logger:    logger,
	}
}

// WithMetrics attaches checkout metrics recording
func (s *OrderService) WithMetrics(metrics CheckoutMetrics) *OrderService {
	s.metrics = metrics
	return s
}

// Checkout places an order. All stock decrements and the order insert run
// in one transaction: if any line cannot be fulfilled the whole checkout
// rolls back and no stock is consumed. The first unfulfillable line
// reported by the database decides the error.
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerName, input.UserName))
	defer span.End()

	lines := mergeItems(input.Items)

	var placed *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orderLines := make([]order.Line, 0, len(lines))

		for _, item := range lines {
			product, err := repos.ProductRepo().FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError(shared.ErrNotFound.Code,
						fmt.Sprintf("Product not found: %s", item.ProductID))
				}
				return err
			}

			if err := repos.ProductRepo().DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return product.InsufficientStockError()
				}
				return err
			}
			telemetry.AddEvent(span, "stock_decremented",
				telemetry.SpanAttrProductSlug, product.Slug,
				telemetry.SpanAttrQuantity, item.Quantity)

			orderLines = append(orderLines, order.Line{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		userID := input.UserID
		o, err := order.NewOrder(&userID, input.UserName, input.UserEmail, input.Address, orderLines)
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if s.metrics != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				s.metrics.RecordCheckoutRejected(ctx, domainErr.Code)
			}
		}
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, placed.ID)
	telemetry.SetOK(span)

	if s.metrics != nil {
		total, _ := placed.Total.Float64()
		s.metrics.RecordOrderPlaced(ctx, placed.ItemCount(), total)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.Int("items", placed.ItemCount()),
		zap.String("total", placed.Total.String()))

	return ToOrderResponse(placed), nil
}

// List retrieves orders matching the query
func (s *OrderService) List(ctx context.Context, query ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
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

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *ToOrderResponse(&orders[i])
	}

	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return ToOrderResponse(o), nil
}

// mergeItems collapses duplicate product lines into one, summing quantities.
// Ordering of first occurrence is preserved so the first offending line in
// the request is also the first one checked.
func mergeItems(items []CheckoutItemInput) []CheckoutItemInput {
	index := make(map[uuid.UUID]int, len(items))
	merged := make([]CheckoutItemInput, 0, len(items))

	for _, item := range items {
		if pos, seen := index[item.ProductID]; seen {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}
