package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// UsersHandler serves the public signup endpoint.
type UsersHandler struct {
	users repository.UserRepository
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users repository.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

// Signup POST /api/users.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.Create(c.UserContext(), req.Name, req.Phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": user})
}
