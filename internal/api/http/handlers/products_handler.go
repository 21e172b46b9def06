package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eshop-service/internal/api/dto"
	"github.com/spec-kit/eshop-service/internal/repository"
	"github.com/spec-kit/eshop-service/internal/service"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// ProductsHandler serves the product catalog.
type ProductsHandler struct {
	catalog *service.CatalogService
}

func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// List handles GET /products?categories=a,b.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	filter := repository.ProductFilter{CategoryIDs: splitCSV(c.Query("categories"))}
	products, err := h.catalog.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductDetailResponses(products)})
}

// Get handles GET /products/:id with the category populated.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductDetailResponse(product)})
}

func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product := req.ToDomain("")
	if err := h.catalog.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": product})
}

func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product := req.ToDomain(c.Params("id"))
	if err := h.catalog.UpdateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// UpdateGallery handles PUT /products/gallery-images/:id.
func (h *ProductsHandler) UpdateGallery(c *fiber.Ctx) error {
	var req dto.GalleryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.catalog.SetGalleryImages(c.UserContext(), c.Params("id"), req.Images)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ProductsHandler) Count(c *fiber.Ctx) error {
	n, err := h.catalog.CountProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.CountResponse{Count: n})
}

// Featured handles GET /products/get/featured/:count. A count of 0 returns
// every featured product.
func (h *ProductsHandler) Featured(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Params("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return apperrors.NewValidationError("count must be a non-negative integer", map[string]any{"count": raw})
		}
		limit = n
	}
	products, err := h.catalog.FeaturedProducts(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
