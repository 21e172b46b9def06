package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/eshop-service/internal/domain"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryIDs []string
}

// ProductRepository manages catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	docs collection[domain.Product]
}

// NewProductRepository constructs repository.
func NewProductRepository(db DB) ProductRepository {
	return &productRepository{docs: newCollection[domain.Product](db, "products")}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.DateCreated.IsZero() {
		product.DateCreated = time.Now().UTC()
	}
	return r.docs.insert(ctx, product.ID, product)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.docs.replace(ctx, product.ID, product)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.docs.get(ctx, id)
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	if len(filter.CategoryIDs) == 0 {
		return r.docs.all(ctx)
	}
	const query = `SELECT doc FROM products WHERE doc->>'category' = ANY($1) ORDER BY created_at`
	return r.docs.find(ctx, query, filter.CategoryIDs)
}

// ListFeatured returns featured products; limit <= 0 means no limit.
func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	const query = `
        SELECT doc FROM products
        WHERE (doc->>'isFeatured')::boolean
        ORDER BY created_at
        LIMIT $1`
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	return r.docs.find(ctx, query, limitArg)
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(ctx)
}
