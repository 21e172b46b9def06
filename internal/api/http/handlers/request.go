package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eshop-service/internal/api/dto"
	apperrors "github.com/spec-kit/eshop-service/pkg/util/errorutil"
)

// parseBody decodes the JSON body into out and runs its validate tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}
