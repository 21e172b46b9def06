package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/eshop-service/internal/cache"
	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/repository"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// ProductWithCategory is a product with its category document populated.
// Category is nil when the reference dangles. The HTTP layer renders it in
// place of the product's category id.
type ProductWithCategory struct {
	domain.Product
	Category *domain.Category `json:"-"`
}

// CatalogService manages categories and products.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      *cache.ProductCache
	logger     *zap.Logger
}

// NewCatalogService constructs the service. productCache may be nil.
func NewCatalogService(categories repository.CategoryRepository, products repository.ProductRepository, productCache *cache.ProductCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{categories: categories, products: products, cache: productCache, logger: logger}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
	}
	return category, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, category *domain.Category) error {
	return s.categories.Create(ctx, category)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, category *domain.Category) error {
	err := s.categories.Update(ctx, category)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("category", map[string]any{"id": category.ID})
	}
	return err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.categories.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("category", map[string]any{"id": id})
	}
	return err
}

// ListProducts returns the filtered listing with categories populated. The
// product documents come from the listing cache when possible; cache
// failures are logged and never fail the request.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]ProductWithCategory, error) {
	products, err := s.listProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, products)
}

func (s *CatalogService) listProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	if products, ok, err := s.cache.GetList(ctx, filter.CategoryIDs); err != nil {
		s.logger.Warn("product cache read failed", zap.Error(err))
	} else if ok {
		return products, nil
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetList(ctx, filter.CategoryIDs, products); err != nil {
		s.logger.Warn("product cache write failed", zap.Error(err))
	}
	return products, nil
}

// populate resolves categories with a single listing query.
func (s *CatalogService) populate(ctx context.Context, products []domain.Product) ([]ProductWithCategory, error) {
	out := make([]ProductWithCategory, 0, len(products))
	if len(products) == 0 {
		return out, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for _, p := range products {
		out = append(out, ProductWithCategory{Product: p, Category: byID[p.CategoryID]})
	}
	return out, nil
}

// GetProduct returns the product with its category populated. A dangling
// category reference leaves Category nil.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*ProductWithCategory, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}

	out := &ProductWithCategory{Product: *product}
	if product.CategoryID != "" {
		category, err := s.categories.GetByID(ctx, product.CategoryID)
		switch {
		case err == nil:
			out.Category = category
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}
	}
	return out, nil
}

// CreateProduct stores a product after checking its category exists.
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.requireCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateProduct replaces a product. An empty Image keeps the stored one.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.requireCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	existing, err := s.products.GetByID(ctx, product.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError("Invalid product", map[string]any{"id": product.ID})
	}
	if err != nil {
		return err
	}
	if product.Image == "" {
		product.Image = existing.Image
	}
	if product.Images == nil {
		product.Images = existing.Images
	}
	product.DateCreated = existing.DateCreated

	if err := s.products.Update(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetGalleryImages replaces the product's gallery.
func (s *CatalogService) SetGalleryImages(ctx context.Context, id string, images []string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	product.Images = images
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.products.ListFeatured(ctx, limit)
}

func (s *CatalogService) requireCategory(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("Invalid category", nil)
	}
	_, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError("Invalid category", map[string]any{"category": id})
	}
	return err
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
}
