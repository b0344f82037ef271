// Package notifier consumes order.created events and raises the kitchen
// notification for each new order.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/satriojati/kedai/internal/domain"
)

type Handler struct {
	logger    *slog.Logger
	processed metric.Int64Counter
}

func NewHandler(logger *slog.Logger) *Handler {
	counter, err := otel.Meter("notifier").Int64Counter("notifications.processed",
		metric.WithDescription("Number of order notifications processed"),
	)
	if err != nil {
		logger.Warn("failed to create notifications counter", "error", err)
	}

	return &Handler{
		logger:    logger,
		processed: counter,
	}
}

func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("new order",
		"order_id", event.OrderID,
		"customer", event.CustomerName,
		"status", event.Status,
		"total", event.Total,
		"items", len(event.Items),
	)

	for _, item := range event.Items {
		h.logger.Info("order line",
			"order_id", event.OrderID,
			"food", item.FoodName,
			"quantity", item.Quantity,
		)
	}

	if h.processed != nil {
		h.processed.Add(ctx, 1)
	}

	return nil
}
