package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/satriojati/kedai/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FoodsByIDs fetches the catalog rows for exactly the referenced ids.
// Soft-deleted foods are excluded, so to the caller they look missing.
func (r *OrderRepository) FoodsByIDs(ctx context.Context, ids []string) ([]domain.Food, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, stock, is_available
		FROM foods
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var foods []domain.Food
	for rows.Next() {
		var f domain.Food
		if err := rows.Scan(&f.ID, &f.Name, &f.Price, &f.Stock, &f.IsAvailable); err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return foods, nil
}

// Create persists the order, its snapshot line items and the matching stock
// decrements in one transaction. The decrement is conditional on remaining
// stock, so a concurrent order for the same food cannot drive it negative;
// zero rows affected means the stock check raced and the whole transaction
// rolls back with a StockError carrying the current remaining count.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, customer_phone, note, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, order.ID, order.CustomerName, order.CustomerPhone, order.Note, order.Status, order.Total, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		itemID := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, food_id, food_name, food_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, itemID, order.ID, item.FoodID, item.FoodName, item.FoodPrice, item.Quantity)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE foods
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL AND stock >= $2
		`, item.FoodID, item.Quantity)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			var remaining int
			_ = tx.QueryRowContext(ctx, `
				SELECT stock FROM foods WHERE id = $1 AND deleted_at IS NULL
			`, item.FoodID).Scan(&remaining)
			return &domain.StockError{FoodName: item.FoodName, Remaining: remaining}
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_phone, note, status, total, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Note, &order.Status, &order.Total, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	order.Items = []domain.OrderItem{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT food_id, food_name, food_price, quantity
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.FoodID, &item.FoodName, &item.FoodPrice, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ListFilter narrows the admin order listing. Status is applied only when
// set; Search matches customer name, phone and note case-insensitively.
type ListFilter struct {
	Status   domain.OrderStatus
	Search   string
	Page     int
	PageSize int
}

// List returns one page of orders plus the total count for the filtered
// set. Line items are loaded in a single batch query.
func (r *OrderRepository) List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (customer_name ILIKE $" + n + " OR customer_phone ILIKE $" + n + " OR note ILIKE $" + n + ")"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)
	query := fmt.Sprintf(`
		SELECT id, customer_name, customer_phone, note, status, total, created_at
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Note, &order.Status, &order.Total, &order.CreatedAt); err != nil {
			return nil, 0, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, total, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, food_id, food_name, food_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.FoodID, &item.FoodName, &item.FoodPrice, &item.Quantity); err != nil {
			return nil, 0, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, 0, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, total, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order; line items cascade. Stock reserved by the
// order is deliberately not restored, matching status updates to
// CANCELLED which do not restore it either.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *OrderRepository) SaveQRCode(ctx context.Context, id string, qr []byte) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET qr_code = $1 WHERE id = $2`, qr, id)
	return err
}

func (r *OrderRepository) QRCode(ctx context.Context, id string) ([]byte, error) {
	var qr []byte
	err := r.db.QueryRowContext(ctx, `SELECT qr_code FROM orders WHERE id = $1`, id).Scan(&qr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return qr, nil
}
