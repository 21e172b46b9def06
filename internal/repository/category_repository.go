package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/eshop-service/internal/domain"
)

// CategoryRepository manages product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryRepository struct {
	docs collection[domain.Category]
}

// NewCategoryRepository constructs repository.
func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{docs: newCollection[domain.Category](db, "categories")}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	return r.docs.insert(ctx, category.ID, category)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return r.docs.replace(ctx, category.ID, category)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.docs.get(ctx, id)
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	return r.docs.all(ctx)
}
