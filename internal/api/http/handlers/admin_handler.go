package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// AdminHandler serves the moderation endpoints.
type AdminHandler struct {
	moderation *service.ModerationService
	stats      *service.StatsService
	tokens     *auth.TokenManager
	adminCfg   config.AdminConfig
}

// NewAdminHandler constructs handler.
func NewAdminHandler(moderation *service.ModerationService, stats *service.StatsService, tokens *auth.TokenManager, adminCfg config.AdminConfig) *AdminHandler {
	return &AdminHandler{moderation: moderation, stats: stats, tokens: tokens, adminCfg: adminCfg}
}

// Login POST /api/admin/login exchanges the admin secret for a session
// token.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !auth.VerifySecret(h.adminCfg, req.Secret) {
		return apperrors.NewUnauthorized("invalid admin secret")
	}
	token, expiresAt, err := h.tokens.GenerateToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}})
}

// ListListings GET /api/admin/listings.
func (h *AdminHandler) ListListings(c *fiber.Ctx) error {
	listings, err := h.moderation.ListListings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listings})
}

// ValidateListing POST /api/admin/listings/:id/validate.
func (h *AdminHandler) ValidateListing(c *fiber.Ctx) error {
	listing, err := h.moderation.ValidateListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listing})
}

// RejectListing POST /api/admin/listings/:id/reject.
func (h *AdminHandler) RejectListing(c *fiber.Ctx) error {
	var req dto.RejectRequest
	_ = c.BodyParser(&req)
	listing, err := h.moderation.RejectListing(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listing})
}

// DeleteListing DELETE /api/admin/listings/:id.
func (h *AdminHandler) DeleteListing(c *fiber.Ctx) error {
	if err := h.moderation.DeleteListing(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.moderation.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": users})
}

// DeleteUser DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.moderation.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ListPayments GET /api/admin/payments.
func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.moderation.ListPayments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payments})
}

// ApprovePayment POST /api/admin/payments/:id/approve.
func (h *AdminHandler) ApprovePayment(c *fiber.Ctx) error {
	payment, err := h.moderation.ApprovePayment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payment})
}

// RejectPayment POST /api/admin/payments/:id/reject.
func (h *AdminHandler) RejectPayment(c *fiber.Ctx) error {
	var req dto.RejectRequest
	_ = c.BodyParser(&req)
	payment, err := h.moderation.RejectPayment(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payment})
}

// Stats GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	if !auth.IsAdmin(c.UserContext()) {
		return apperrors.NewUnauthorized("administrator capability required")
	}
	stats, err := h.stats.Compute(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
