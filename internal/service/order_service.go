package service

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/events"
	"github.com/spec-kit/eshop-service/internal/repository"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// OrderInput describes an order to place.
type OrderInput struct {
	Items            []domain.OrderItem
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
}

// OrderService handles order placement and fulfilment.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// NewOrderService constructs the service.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{orders: orders, products: products, dispatcher: dispatcher}
}

// Place creates an order owned by userID. The total is computed from the
// current product prices; client-supplied totals are never trusted.
func (s *OrderService) Place(ctx context.Context, userID string, input OrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.NewValidationError("order must contain at least one item", nil)
	}

	var total float64
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"product": item.ProductID})
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("Invalid product", map[string]any{"product": item.ProductID})
		}
		if err != nil {
			return nil, err
		}
		total += product.Price * float64(item.Quantity)
	}

	order := &domain.Order{
		OrderItems:       input.Items,
		ShippingAddress1: input.ShippingAddress1,
		ShippingAddress2: input.ShippingAddress2,
		City:             input.City,
		Zip:              input.Zip,
		Country:          input.Country,
		Phone:            input.Phone,
		Status:           domain.OrderStatusPending,
		TotalPrice:       math.Round(total*100) / 100,
		UserID:           userID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventOrderPlaced,
		ActorID: userID,
		Payload: events.OrderPlacedPayload{
			OrderID:    order.ID,
			UserID:     userID,
			Items:      len(order.OrderItems),
			TotalPrice: order.TotalPrice,
		},
	})
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
	}
	return order, err
}

// UpdateStatus moves an order to status.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status", map[string]any{"status": status})
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := order.Status
	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if old != status {
		s.publish(ctx, events.Event{
			Type:    events.EventOrderStatusChanged,
			ActorID: actorID,
			Payload: events.OrderStatusChangedPayload{OrderID: id, OldStatus: old, NewStatus: status},
		})
	}
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	err := s.orders.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("order", map[string]any{"id": id})
	}
	return err
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}

func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	return s.orders.TotalSales(ctx)
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
