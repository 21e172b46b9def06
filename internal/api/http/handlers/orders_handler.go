package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eshop-service/internal/api/dto"
	"github.com/spec-kit/eshop-service/internal/auth"
	"github.com/spec-kit/eshop-service/internal/service"
)

// OrdersHandler serves order placement and administration.
type OrdersHandler struct {
	orders *service.OrderService
}

func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Place handles POST /orders. The caller becomes the order owner.
func (h *OrdersHandler) Place(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return auth.AsDomainError(auth.ErrNoToken)
	}
	var req dto.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Place(c.UserContext(), claims.UserID, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": order})
}

func (h *OrdersHandler) List(c *fiber.Ctx) error {
	orders, err := h.orders.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// Get handles GET /orders/:id for the owner or an admin.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	claims, _ := auth.ClaimsFromContext(c)
	if !auth.IsSelfOrAdmin(claims, order.UserID) {
		return auth.AsDomainError(auth.ErrInsufficientPrivilege)
	}
	return c.JSON(fiber.Map{"data": order})
}

// ListByUser handles GET /orders/get/userorders/:userid.
func (h *OrdersHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Params("userid")
	claims, _ := auth.ClaimsFromContext(c)
	if !auth.IsSelfOrAdmin(claims, userID) {
		return auth.AsDomainError(auth.ErrInsufficientPrivilege)
	}
	orders, err := h.orders.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// UpdateStatus handles PUT /orders/:id (admin).
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateOrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	claims, _ := auth.ClaimsFromContext(c)
	order, err := h.orders.UpdateStatus(c.UserContext(), claims.UserID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": order})
}

func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *OrdersHandler) Count(c *fiber.Ctx) error {
	n, err := h.orders.Count(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.CountResponse{Count: n})
}

func (h *OrdersHandler) TotalSales(c *fiber.Ctx) error {
	total, err := h.orders.TotalSales(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.TotalSalesResponse{TotalSales: total})
}
