package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eshop-service/internal/api/dto"
	"github.com/spec-kit/eshop-service/internal/auth"
	"github.com/spec-kit/eshop-service/internal/service"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

// UsersHandler exposes account and user administration endpoints.
type UsersHandler struct {
	auth     *service.AuthService
	users    *service.UserService
	recorder LoginRecorder
}

// NewUsersHandler constructs handler. recorder may be nil.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService, recorder LoginRecorder) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService, recorder: recorder}
}

// Register handles POST /users/register. The account is never an admin.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), registerInput(req, false))
	if err != nil {
		return auth.AsDomainError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create handles POST /users (admin), which may grant the admin flag.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), registerInput(req.RegisterRequest, req.IsAdmin))
	if err != nil {
		return auth.AsDomainError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.recordLogin(auth.AsDomainErrorCode(err))
		return auth.AsDomainError(err)
	}
	h.recordLogin("success")
	return c.JSON(dto.LoginResponse{Email: result.Email, Token: result.Token})
}

// List handles GET /users (admin).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Get handles GET /users/:id for the user themself or an admin.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	claims, _ := auth.ClaimsFromContext(c)
	if !auth.IsSelfOrAdmin(claims, id) {
		return auth.AsDomainError(auth.ErrInsufficientPrivilege)
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id (admin).
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Count handles GET /users/get/count (admin).
func (h *UsersHandler) Count(c *fiber.Ctx) error {
	n, err := h.users.Count(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.CountResponse{Count: n})
}

func (h *UsersHandler) recordLogin(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordLogin(outcome)
	}
}

func registerInput(req dto.RegisterRequest, isAdmin bool) service.RegisterInput {
	return service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		IsAdmin:   isAdmin,
		Street:    req.Street,
		Apartment: req.Apartment,
		Zip:       req.Zip,
		City:      req.City,
		Country:   req.Country,
	}
}
