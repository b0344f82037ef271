package orders

import (
	"context"
	"log/slog"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/satriojati/kedai/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Repository is the storage surface the order service depends on.
type Repository interface {
	FoodsByIDs(ctx context.Context, ids []string) ([]domain.Food, error)
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
	SaveQRCode(ctx context.Context, id string, qr []byte) error
	QRCode(ctx context.Context, id string) ([]byte, error)
}

// Producer publishes order events. Satisfied by messaging.Producer.
type Producer interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	repo          Repository
	producer      Producer
	logger        *slog.Logger
	ordersCreated metric.Int64Counter
}

func NewService(repo Repository, producer Producer, logger *slog.Logger) *Service {
	counter, err := otel.Meter("orders").Int64Counter("orders.created",
		metric.WithDescription("Number of orders successfully created"),
	)
	if err != nil {
		logger.Warn("failed to create orders counter", "error", err)
	}

	return &Service{
		repo:          repo,
		producer:      producer,
		logger:        logger,
		ordersCreated: counter,
	}
}

// Create runs the full order pipeline: normalize and validate the payload,
// check the referenced foods against the current catalog, then persist the
// order with snapshot pricing and reserve stock atomically. allowStatus is
// true only for admin-authored orders.
func (s *Service) Create(ctx context.Context, payload map[string]any, allowStatus bool) (*domain.Order, error) {
	input, err := ParseCreateOrder(payload, allowStatus)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(input.Items))
	for i, item := range input.Items {
		ids[i] = item.FoodID
	}

	foods, err := s.repo.FoodsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	snapshot, total, err := CheckStock(input.Items, foods)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Note:          input.Note,
		Status:        input.Status,
		Total:         total,
		Items:         make([]domain.OrderItem, len(input.Items)),
		CreatedAt:     time.Now().UTC(),
	}

	for i, item := range input.Items {
		food := snapshot[item.FoodID]
		order.Items[i] = domain.OrderItem{
			FoodID:    food.ID,
			FoodName:  food.Name,
			FoodPrice: food.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if s.ordersCreated != nil {
		s.ordersCreated.Add(ctx, 1)
	}

	// Pickup code and event publishing happen after commit and are
	// best-effort: the order stands even if they fail.
	if qr, err := qrcode.Encode(order.ID, qrcode.Medium, 256); err != nil {
		s.logger.Error("failed to generate pickup code", "error", err, "order_id", order.ID)
	} else if err := s.repo.SaveQRCode(ctx, order.ID, qr); err != nil {
		s.logger.Error("failed to save pickup code", "error", err, "order_id", order.ID)
	}

	if s.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:   order.ID,
			Status:    order.Status,
			Total:     order.Total,
			Items:     order.Items,
			Timestamp: order.CreatedAt,
		}
		if order.CustomerName != nil {
			event.CustomerName = *order.CustomerName
		}
		if err := s.producer.Publish(ctx, order.ID, event); err != nil {
			s.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("order not found")
	}
	return order, nil
}

type ListResult struct {
	Items    []domain.Order `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// List applies pagination defaults and drops an unrecognized status filter
// instead of failing, then delegates to the repository.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		filter.Status = ""
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdateStatus changes the order status to one of the four enum values.
// Status is the only field an order mutation can touch after creation.
func (s *Service) UpdateStatus(ctx context.Context, id string, payload map[string]any) (*domain.Order, error) {
	v, ok := payload["status"].(string)
	status := domain.OrderStatus(v)
	if !ok || !domain.ValidStatus(status) {
		return nil, domain.NewValidationError("invalid order payload",
			"status: must be one of PENDING, PROCESSED, DONE, CANCELLED")
	}

	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("order not found")
	}
	return order, nil
}

// Delete removes the order and its line items. Reserved stock is not
// restored.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NewNotFoundError("order not found")
	}
	return nil
}

func (s *Service) QRCode(ctx context.Context, id string) ([]byte, error) {
	qr, err := s.repo.QRCode(ctx, id)
	if err != nil {
		return nil, err
	}
	if qr == nil {
		return nil, domain.NewNotFoundError("order not found")
	}
	return qr, nil
}
