package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriojati/kedai/internal/domain"
)

func TestHandler_Handle(t *testing.T) {
	t.Run("logs the order and its lines", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

		event := domain.OrderCreatedEvent{
			OrderID:      "order-1",
			CustomerName: "Budi",
			Status:       "PENDING",
			Total:        40000,
			Items: []domain.OrderItem{
				{FoodID: "food-a", FoodName: "Nasi Goreng", FoodPrice: 20000, Quantity: 2},
			},
			Timestamp: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		require.NoError(t, err)

		require.NoError(t, handler.Handle(context.Background(), payload))

		logs := buf.String()
		assert.Contains(t, logs, "order-1")
		assert.Contains(t, logs, "Budi")
		assert.Contains(t, logs, "Nasi Goreng")
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

		err := handler.Handle(context.Background(), []byte("not json"))
		assert.Error(t, err)
	})
}
