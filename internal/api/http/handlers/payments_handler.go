package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// PaymentsHandler serves the public payment declaration endpoint.
type PaymentsHandler struct {
	payments   repository.PaymentRepository
	dispatcher events.Dispatcher
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments repository.PaymentRepository, dispatcher events.Dispatcher) *PaymentsHandler {
	return &PaymentsHandler{payments: payments, dispatcher: dispatcher}
}

// Create POST /api/payments.
func (h *PaymentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	payment, instruction, err := h.payments.Create(c.UserContext(), repository.PaymentCreateInput{
		UserID:    req.UserID,
		ListingID: req.ListingID,
		Amount:    req.Amount,
		Reference: req.Reference,
		Method:    req.Method,
	})
	if err != nil {
		return err
	}

	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(c.UserContext(), events.Event{
			Type:      events.EventPaymentDeclared,
			SubjectID: payment.ID,
			Payload: events.PaymentDeclaredPayload{
				UserID:    payment.UserID,
				ListingID: payment.ListingID,
				Amount:    payment.Amount,
				Method:    payment.Method,
			},
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PaymentCreatedResponse{
		Payment:     *payment,
		Instruction: instruction,
	}})
}
