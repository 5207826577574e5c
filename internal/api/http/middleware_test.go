package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/observability"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

func TestMiddleware_ErrorEnvelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("listing", map[string]any{"id": "l-1"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
	require.NotEmpty(t, body.Error.RequestID)
}

func TestMiddleware_AccessLogRecordsFinalStatus(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized("administrator capability required")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The counter must carry the status the client received, not the
	// default status the handler left before the envelope was written.
	require.Equal(t, int64(1), metrics.Requests("/boom", "GET", fiber.StatusUnauthorized))
	require.Zero(t, metrics.Requests("/boom", "GET", fiber.StatusOK))
}
