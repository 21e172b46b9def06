package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/eshop-service/internal/domain"
)

// OrderRepository manages customer orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (float64, error)
}

type orderRepository struct {
	db   DB
	docs collection[domain.Order]
}

// NewOrderRepository constructs repository.
func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db, docs: newCollection[domain.Order](db, "orders")}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.DateOrdered.IsZero() {
		order.DateOrdered = time.Now().UTC()
	}
	return r.docs.insert(ctx, order.ID, order)
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.docs.replace(ctx, order.ID, order)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.docs.get(ctx, id)
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	const query = `SELECT doc FROM orders ORDER BY doc->>'dateOrdered' DESC`
	return r.docs.find(ctx, query)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const query = `SELECT doc FROM orders WHERE doc->>'user' = $1 ORDER BY doc->>'dateOrdered' DESC`
	return r.docs.find(ctx, query, userID)
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(ctx)
}

func (r *orderRepository) TotalSales(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM((doc->>'totalPrice')::numeric), 0)::float8 FROM orders`
	var total float64
	if err := r.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
