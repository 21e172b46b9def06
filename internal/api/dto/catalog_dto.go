package dto

import (
	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/service"
)

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Description     string  `json:"description" validate:"required"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price" validate:"gte=0"`
	Category        string  `json:"category" validate:"required"`
	CountInStock    int     `json:"countInStock" validate:"gte=0,lte=255"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`
	NumReviews      int     `json:"numReviews" validate:"gte=0"`
	IsFeatured      bool    `json:"isFeatured"`
}

// GalleryRequest replaces a product's gallery with already uploaded URLs.
type GalleryRequest struct {
	Images []string `json:"images" validate:"required,max=10,dive,required"`
}

// ProductDetailResponse is a product whose "category" holds the category
// document, or the bare id when it could not be resolved. The outer field
// shadows the embedded product's id field.
type ProductDetailResponse struct {
	domain.Product
	Category any `json:"category"`
}

func (r CategoryRequest) ToDomain(id string) *domain.Category {
	return &domain.Category{ID: id, Name: r.Name, Icon: r.Icon, Color: r.Color}
}

func (r ProductRequest) ToDomain(id string) *domain.Product {
	return &domain.Product{
		ID:              id,
		Name:            r.Name,
		Description:     r.Description,
		RichDescription: r.RichDescription,
		Image:           r.Image,
		Brand:           r.Brand,
		Price:           r.Price,
		CategoryID:      r.Category,
		CountInStock:    r.CountInStock,
		Rating:          r.Rating,
		NumReviews:      r.NumReviews,
		IsFeatured:      r.IsFeatured,
	}
}

// NewProductDetailResponse replaces the category reference with the
// category document when it could be resolved.
func NewProductDetailResponse(p *service.ProductWithCategory) ProductDetailResponse {
	out := ProductDetailResponse{Product: p.Product, Category: p.Product.CategoryID}
	if p.Category != nil {
		out.Category = p.Category
	}
	return out
}

func NewProductDetailResponses(products []service.ProductWithCategory) []ProductDetailResponse {
	out := make([]ProductDetailResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductDetailResponse(&products[i]))
	}
	return out
}
