package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
)

func TestRespondErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", services.ErrInvalidWindow, fiber.StatusBadRequest, services.ErrInvalidWindow.Msg},
		{"conflict", services.ErrShopNameTaken, fiber.StatusConflict, services.ErrShopNameTaken.Msg},
		{"not found", services.ErrShopNotFound, fiber.StatusNotFound, services.ErrShopNotFound.Msg},
		{
			"transaction timeout",
			&services.Error{Kind: services.ErrTransactionTimeout, Op: "Error in updating shop", Err: fmt.Errorf("%w (20ms): context deadline exceeded", database.ErrTxTimeout)},
			fiber.StatusServiceUnavailable,
			"The server is busy, please retry",
		},
		{
			"connection wait",
			&services.Error{Kind: services.ErrTransactionTimeout, Op: "Error in creating product", Err: fmt.Errorf("%w after 5s", database.ErrTxWaitExceeded)},
			fiber.StatusServiceUnavailable,
			"The server is busy, please retry",
		},
		{
			"dependency",
			&services.Error{Kind: services.ErrDependency, Op: "Error in fetching shop", Err: errors.New("redis: connection refused")},
			fiber.StatusInternalServerError,
			"Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body, _ := io.ReadAll(resp.Body)
			var got dto.ErrorResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode %s: %v", body, err)
			}
			if !got.Error || got.Message != tt.message {
				t.Fatalf("body = %+v, want message %q", got, tt.message)
			}
		})
	}
}
